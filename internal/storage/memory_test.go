package storage

import (
	"errors"
	"testing"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
)

func id(b byte) domain.ID { return domain.ID{b} }

func TestPutGetDelete(t *testing.T) {
	s := New(&logger.NopLogger{})
	res := domain.Resource{Key: id(10), Value: []byte("v1")}
	s.Put(res, domain.RolePrimary)

	got, err := s.Get(id(10))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != "v1" {
		t.Errorf("Get returned %q, want v1", got.Value)
	}

	if err := s.Delete(id(10)); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(id(10)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(id(10)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestPutOverwritesValueAndRole(t *testing.T) {
	s := New(&logger.NopLogger{})
	s.Put(domain.Resource{Key: id(5), Value: []byte("v1")}, domain.RolePrimary)
	s.Put(domain.Resource{Key: id(5), Value: []byte("v2")}, domain.RoleReplica)

	got, err := s.Get(id(5))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Value) != "v2" {
		t.Errorf("Get = %q, want v2", got.Value)
	}
	role, ok := s.Role(id(5))
	if !ok || role != domain.RoleReplica {
		t.Errorf("Role = %v,%v want RoleReplica,true", role, ok)
	}
}

func TestBetweenWrapsAround(t *testing.T) {
	s := New(&logger.NopLogger{})
	for _, b := range []byte{250, 0, 5, 100, 200} {
		s.Put(domain.Resource{Key: id(b), Value: []byte("x")}, domain.RolePrimary)
	}
	got := s.Between(id(240), id(10))
	if len(got) != 3 { // 250, 0, 5
		t.Fatalf("Between(240,10] = %d entries, want 3", len(got))
	}
}

func TestPrimariesExcludesReplicas(t *testing.T) {
	s := New(&logger.NopLogger{})
	s.Put(domain.Resource{Key: id(1), Value: []byte("a")}, domain.RolePrimary)
	s.Put(domain.Resource{Key: id(2), Value: []byte("b")}, domain.RoleReplica)
	got := s.Primaries()
	if len(got) != 1 || !got[0].Key.Equal(id(1)) {
		t.Fatalf("Primaries() = %v, want only key 1", got)
	}
}
