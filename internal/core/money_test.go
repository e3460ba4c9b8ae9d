package core

import "testing"

func TestParseRupiah(t *testing.T) {
	cases := []struct {
		in  string
		out Rupiah
		ok  bool
	}{
		{"3300000", 3300000, true},
		{"3.300.000", 3300000, true},
		{"Rp 3.300.000", 3300000, true},
		{"rp3,300,000", 3300000, true},
		{"3,300,000.00", 3300000, true},
		{"3.300.000,00", 3300000, true},
		{" 250 000 ", 250000, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"12.5k", 0, false},
		{"", 0, false},
		{"Rp", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRupiah(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestRupiahString(t *testing.T) {
	cases := map[Rupiah]string{
		0:          "Rp 0",
		999:        "Rp 999",
		1000:       "Rp 1.000",
		3300000:    "Rp 3.300.000",
		-150000:    "Rp -150.000",
		1234567890: "Rp 1.234.567.890",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Fatalf("%d expected %q, got %q", in, want, got)
		}
	}
}
