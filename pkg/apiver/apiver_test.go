package apiver

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, v := range []Version{V1_0_0, V1_1_0, V1_2_0, {3, 14, 159}} {
		got, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", v.String(), err)
		}
		if got != v {
			t.Fatalf("Parse(%q) = %v", v.String(), got)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "1", "1.2", "1.2.3.4", "1.x.0", "-1.0.0", "1..0"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) accepted malformed input", s)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	cases := []struct {
		a, b Version
		want int
	}{
		{V1_0_0, V1_0_0, 0},
		{V1_0_0, V1_1_0, -1},
		{V1_2_0, V1_1_0, 1},
		{Version{2, 0, 0}, V1_2_0, 1},
		{Version{1, 1, 1}, V1_1_0, 1},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := c.b.Compare(c.a); got != -c.want {
			t.Errorf("%v.Compare(%v) = %d, want %d", c.b, c.a, got, -c.want)
		}
	}
}

func TestAtLeast(t *testing.T) {
	if !V1_2_0.AtLeast(V1_1_0) || !V1_1_0.AtLeast(V1_1_0) {
		t.Error("AtLeast is not reflexive over the published lattice")
	}
	if V1_0_0.AtLeast(V1_1_0) {
		t.Error("1.0.0 must not satisfy a 1.1.0 floor")
	}
}

func TestFeatureNames(t *testing.T) {
	feats := []Feature{FeatureAggregation, FeatureNonInteractivePoRep}
	if got := FeatureNames(feats); got != "aggregation,non-interactive-porep" {
		t.Fatalf("FeatureNames = %q", got)
	}
	if !HasFeature(feats, FeatureAggregation) {
		t.Error("HasFeature missed a present feature")
	}
	if HasFeature(feats, FeatureSyntheticPoRep) {
		t.Error("HasFeature reported an absent feature")
	}
}
