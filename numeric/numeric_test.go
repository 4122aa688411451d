package numeric

import "testing"

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    Locale
	}{
		{"empty", nil, LocaleUnknown},
		{"dot decimals", []string{"1,234.56", "99.90", "5"}, LocaleDot},
		{"comma decimals", []string{"1.234,56", "99,90"}, LocaleComma},
		{"plain integers", []string{"5", "10", "200"}, LocaleUnknown},
		{"currency noise", []string{"$1,234.56", "₪ 99.90"}, LocaleDot},
		{"mixed majority comma", []string{"1,50", "2,75", "3.10"}, LocaleComma},
		{"single decimal comma", []string{"12,5", "7,5", "99,9"}, LocaleComma},
		{"comma grouping no vote", []string{"1,234", "5,000"}, LocaleUnknown},
		{"non numeric ignored", []string{"SRV-100", "abc", "12,34"}, LocaleComma},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLocale(tt.samples); got != tt.want {
				t.Errorf("DetectLocale(%v) = %v, want %v", tt.samples, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		loc  Locale
		want string
		ok   bool
	}{
		{"plain", "500", LocaleUnknown, "500", true},
		{"dot decimal", "1,234.56", LocaleDot, "1234.56", true},
		{"comma decimal", "1.234,56", LocaleComma, "1234.56", true},
		{"unknown locale comma cents", "99,90", LocaleUnknown, "99.9", true},
		{"unknown locale one decimal comma", "12,5", LocaleUnknown, "12.5", true},
		{"unknown locale comma grouping", "1,234", LocaleUnknown, "1234", true},
		{"unknown locale dot", "99.90", LocaleUnknown, "99.9", true},
		{"dollar sign", "$500.00", LocaleDot, "500", true},
		{"shekel sign", "₪1,500", LocaleDot, "1500", true},
		{"currency code", "500 NIS", LocaleDot, "500", true},
		{"negative rejected", "-50", LocaleDot, "0", false},
		{"empty", "", LocaleDot, "0", false},
		{"garbage", "call us", LocaleDot, "0", false},
		{"grouping only comma locale", "1.500", LocaleComma, "1500", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw, tt.loc)
			if ok != tt.ok {
				t.Fatalf("ParsePrice(%q, %v) ok = %v, want %v", tt.raw, tt.loc, ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParsePrice(%q, %v) = %s, want %s", tt.raw, tt.loc, got, tt.want)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{" 10 ", 10, true},
		{"1,000", 1000, true},
		{"2 pcs", 2, true},
		{"3.7", 3, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"", 0, false},
		{"many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseQuantity(tt.raw)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseQuantity(%q) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLooksNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"1,234.56", true},
		{"$99", true},
		{"SRV-100", false},
		{"", false},
		{"- ", false},
	}
	for _, tt := range tests {
		if got := LooksNumeric(tt.raw); got != tt.want {
			t.Errorf("LooksNumeric(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
