package keys

import (
	"regexp"
	"strings"
	"testing"
)

func TestDeterminism_SameInputsSameKey(t *testing.T) {
	k1 := Filter("g5", 5, "geographic", "149.0,-35.3,149.3,-35.1")
	k2 := Filter("g5", 5, "geographic", "149.0,-35.3,149.3,-35.1")
	if k1 != k2 {
		t.Fatalf("determinism failed:\n k1=%s\n k2=%s", k1, k2)
	}
}

func TestNormalization_SpacingVariantsProduceSameKey(t *testing.T) {
	k1 := Filter(" g5 ", 5, "geographic", " 149.0 , -35.3,149.3,  -35.1 ")
	k2 := Filter("g5", 5, "geographic", "149.0,-35.3,149.3,-35.1")
	if k1 != k2 {
		t.Fatalf("normalized keys differ:\n k1=%s\n k2=%s", k1, k2)
	}
	if !regexp.MustCompile(`^[A-Za-z0-9:_=~.\-]+$`).MatchString(k1) {
		t.Fatalf("key contains disallowed characters: %s", k1)
	}
}

func TestDifference_KindAndValueMatter(t *testing.T) {
	a := Filter("g5", 5, "cell", "N1")
	b := Filter("g5", 5, "cell", "N2")
	c := Filter("g5", 5, "cell_pair", "N1")
	if a == b || a == c {
		t.Fatalf("keys collide: %s %s %s", a, b, c)
	}
}

func TestFilterPrefix(t *testing.T) {
	k := Filter("g5", 5, "cell", "N1")
	if !strings.HasPrefix(k, FilterPrefix("g5")) {
		t.Fatalf("%s lacks prefix %s", k, FilterPrefix("g5"))
	}
	if strings.HasPrefix(k, FilterPrefix("g50")) {
		t.Fatalf("%s matched another collection's prefix", k)
	}
	if !strings.HasPrefix(k, FilterPrefix("")) {
		t.Fatalf("%s lacks the namespace prefix", k)
	}
}

func TestLongValuesAreTruncatedButDistinct(t *testing.T) {
	long := strings.Repeat("N0", 200)
	k1 := Filter("g14", 14, "cell", long)
	k2 := Filter("g14", 14, "cell", long+"1")
	if k1 == k2 {
		t.Fatalf("hash suffix should keep long keys distinct")
	}
}
