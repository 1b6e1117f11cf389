package search

import (
	"testing"

	"github.com/hyperjump/kotae/internal/vector"
)

func TestFuseKeepsBestScorePerID(t *testing.T) {
	primary := []vector.Hit{
		{FAQID: 1, Score: 0.9},
		{FAQID: 2, Score: 0.5},
	}
	alternate := []vector.Hit{
		{FAQID: 2, Score: 0.8},
		{FAQID: 3, Score: 0.7},
	}
	fused := Fuse(primary, alternate, 10)
	if len(fused) != 3 {
		t.Fatalf("len = %d", len(fused))
	}
	want := []vector.Hit{
		{FAQID: 1, Score: 0.9},
		{FAQID: 2, Score: 0.8},
		{FAQID: 3, Score: 0.7},
	}
	for i, w := range want {
		if fused[i] != w {
			t.Errorf("fused[%d] = %+v, want %+v", i, fused[i], w)
		}
	}
}

func TestFuseTieBreaksOnLowerID(t *testing.T) {
	primary := []vector.Hit{{FAQID: 9, Score: 0.5}}
	alternate := []vector.Hit{{FAQID: 3, Score: 0.5}}
	fused := Fuse(primary, alternate, 10)
	if fused[0].FAQID != 3 || fused[1].FAQID != 9 {
		t.Errorf("tie order = %d, %d", fused[0].FAQID, fused[1].FAQID)
	}
}

func TestFuseTruncates(t *testing.T) {
	primary := []vector.Hit{
		{FAQID: 1, Score: 0.9},
		{FAQID: 2, Score: 0.8},
		{FAQID: 3, Score: 0.7},
	}
	fused := Fuse(primary, nil, 2)
	if len(fused) != 2 {
		t.Fatalf("len = %d", len(fused))
	}
	if fused[0].FAQID != 1 || fused[1].FAQID != 2 {
		t.Errorf("order = %d, %d", fused[0].FAQID, fused[1].FAQID)
	}
}

func TestFuseEmpty(t *testing.T) {
	if got := Fuse(nil, nil, 5); len(got) != 0 {
		t.Errorf("expected empty fuse, got %d", len(got))
	}
}
