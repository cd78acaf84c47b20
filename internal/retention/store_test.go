package retention

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory Store. Objects keep insertion order per bucket,
// which is the order listings return them in.
type memStore struct {
	mu      sync.Mutex
	order   []string
	objects map[string][]Object

	listErr   map[string]error
	deleteErr map[string]error
	deletes   int
}

func newMemStore() *memStore {
	return &memStore{
		objects:   make(map[string][]Object),
		listErr:   make(map[string]error),
		deleteErr: make(map[string]error),
	}
}

func (s *memStore) put(bucket, key string, lastModified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[bucket]; !ok {
		s.order = append(s.order, bucket)
	}
	s.objects[bucket] = append(s.objects[bucket], Object{Key: key, LastModified: lastModified})
}

func (s *memStore) count(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects[bucket])
}

func (s *memStore) keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, obj := range s.objects[bucket] {
		out = append(out, obj.Key)
	}
	return out
}

func (s *memStore) ListBuckets(ctx context.Context) ([]string, error) {
	if err := s.listErr[""]; err != nil {
		return nil, err
	}
	return append([]string(nil), s.order...), nil
}

func (s *memStore) ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.listErr[bucket]; err != nil {
		return nil, err
	}
	var out []Object
	for _, obj := range s.objects[bucket] {
		if strings.HasPrefix(obj.Key, prefix) {
			out = append(out, obj)
		}
	}
	return out, nil
}

// ListCommonPrefixes mirrors S3: prefixes come back in lexical order.
func (s *memStore) ListCommonPrefixes(ctx context.Context, bucket, delimiter string) ([]CommonPrefix, error) {
	s.mu.Lock()
	if err := s.listErr[bucket]; err != nil {
		s.mu.Unlock()
		return nil, err
	}
	seen := make(map[string]bool)
	var prefixes []string
	for _, obj := range s.objects[bucket] {
		seg, _, ok := strings.Cut(obj.Key, delimiter)
		if !ok {
			continue
		}
		p := seg + delimiter
		if !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	s.mu.Unlock()

	sort.Strings(prefixes)
	out := make([]CommonPrefix, 0, len(prefixes))
	for _, p := range prefixes {
		objs, err := s.ListObjects(ctx, bucket, p)
		if err != nil {
			return nil, err
		}
		out = append(out, CommonPrefix{Prefix: p, Objects: objs})
	}
	return out, nil
}

func (s *memStore) DeleteObject(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if err := s.deleteErr[key]; err != nil {
		return err
	}
	objs := s.objects[bucket]
	for i, obj := range objs {
		if obj.Key == key {
			s.objects[bucket] = append(objs[:i:i], objs[i+1:]...)
			return nil
		}
	}
	return errors.New("no such key")
}
