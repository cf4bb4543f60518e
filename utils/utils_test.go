package utils

import (
	"reflect"
	"testing"
)

func TestSplitTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"静か", []string{"静か"}},
		{"静か, 無口,静か", []string{"静か", "無口"}},
		{" a , , b ", []string{"a", "b"}},
	}
	for _, c := range cases {
		if got := SplitTags(c.in); !reflect.DeepEqual(got, c.want) && !(len(got) == 0 && len(c.want) == 0) {
			t.Errorf("SplitTags(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGenerateRandomStringLength(t *testing.T) {
	if got := GenerateRandomString(10); len([]rune(got)) != 10 {
		t.Fatalf("expected length 10, got %q", got)
	}
	if got := GenerateRandomDigitString(12); len(got) != 12 {
		t.Fatalf("expected length 12, got %q", got)
	}
}
