package probe

import (
	"strings"
	"testing"
)

func sample() []Info {
	return []Info{
		{VendorID: 0x18d1, ProductID: 0x4ee1, Vendor: "Google", Product: "Nexus 7", Serial: "015d25685848"},
		{VendorID: 0x04e8, ProductID: 0x6860, Vendor: "Samsung", Product: "Galaxy", Serial: "ce0516"},
	}
}

func TestMatch(t *testing.T) {
	all, err := Match(sample(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("empty pattern: %v, %d matches", err, len(all))
	}

	got, err := Match(sample(), "Nexus")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Vendor != "Google" {
		t.Errorf("Match(Nexus) = %v", got)
	}

	got, err = Match(sample(), "04e8:")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Vendor != "Samsung" {
		t.Errorf("matching on the vid:pid prefix failed: %v", got)
	}

	if _, err := Match(sample(), "("); err == nil {
		t.Error("bad regexp must fail")
	}
}

func TestSelect(t *testing.T) {
	if _, err := Select(sample(), "Nokia"); err == nil {
		t.Error("no match must fail")
	}

	if _, err := Select(sample(), ""); err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("two candidates must be ambiguous, got %v", err)
	}

	d, err := Select(sample(), "Galaxy")
	if err != nil {
		t.Fatal(err)
	}
	if d.ProductID != 0x6860 {
		t.Errorf("selected %v", d)
	}
}

func TestInfoID(t *testing.T) {
	i := sample()[0]
	id := i.ID()
	for _, want := range []string{"18d1:4ee1", "Google", "Nexus 7", "015d25685848"} {
		if !strings.Contains(id, want) {
			t.Errorf("ID %q missing %q", id, want)
		}
	}
}
