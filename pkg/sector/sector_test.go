package sector

import (
	"errors"
	"testing"

	"github.com/MuriData/muri-sector-proofs/config"
)

func TestParametersClosedSet(t *testing.T) {
	for _, s := range Sizes() {
		p, err := Parameters(s)
		if err != nil {
			t.Fatalf("Parameters(%s): %v", s, err)
		}
		if p.Size != s {
			t.Errorf("%s: params carry size %s", s, p.Size)
		}
		if p.LeafCount != uint64(s)/config.NodeSize {
			t.Errorf("%s: leaf count %d", s, p.LeafCount)
		}
		if p.Arity != 2 {
			t.Errorf("%s: arity %d", s, p.Arity)
		}
		if !Supported(s) {
			t.Errorf("%s not reported as supported", s)
		}
	}

	for _, s := range []Size{0, 4 << 10, Size2KiB + 1, 1 << 40} {
		if _, err := Parameters(s); !errors.Is(err, ErrUnsupportedSectorSize) {
			t.Errorf("Parameters(%d) = %v, want ErrUnsupportedSectorSize", s, err)
		}
		if Supported(s) {
			t.Errorf("Supported(%d) = true", s)
		}
	}
}

func TestPartitionTable(t *testing.T) {
	cases := []struct {
		size          Size
		partitions    uint8
		niPartitions  uint8
		windowSectors int
	}{
		{Size2KiB, 1, 1, 2},
		{Size8MiB, 1, 1, 2},
		{Size512MiB, 1, 1, 2},
		{Size32GiB, 10, 126, 2349},
		{Size64GiB, 10, 126, 2300},
	}
	for _, c := range cases {
		p, err := Parameters(c.size)
		if err != nil {
			t.Fatalf("Parameters(%s): %v", c.size, err)
		}
		if p.Partitions != c.partitions {
			t.Errorf("%s: partitions %d, want %d", c.size, p.Partitions, c.partitions)
		}
		if p.NonInteractivePartitions != c.niPartitions {
			t.Errorf("%s: NI partitions %d, want %d", c.size, p.NonInteractivePartitions, c.niPartitions)
		}
		if p.WindowPoStSectorCount != c.windowSectors {
			t.Errorf("%s: window sectors %d, want %d", c.size, p.WindowPoStSectorCount, c.windowSectors)
		}
		if p.WinningPoStSectorCount != config.WinningPoStSectorCount {
			t.Errorf("%s: winning sectors %d", c.size, p.WinningPoStSectorCount)
		}
	}
}

func TestSizesAscending(t *testing.T) {
	sizes := Sizes()
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			t.Fatalf("Sizes() not ascending at %d: %v", i, sizes)
		}
	}
}

func TestSizeString(t *testing.T) {
	if Size2KiB.String() != "2KiB" || Size64GiB.String() != "64GiB" {
		t.Fatal("size rendering changed")
	}
	if Size(12345).String() != "12345B" {
		t.Fatalf("fallback rendering = %q", Size(12345).String())
	}
}
