package importer

import "testing"

func TestClassifyCarrierTracking(t *testing.T) {
	tests := []struct {
		name         string
		first        string
		second       string
		wantCarrier  string
		wantTracking string
	}{
		{"carrier first", "MSC", "MEDU1234567", "MSC", "MEDU1234567"},
		{"swapped medu", "MEDU1234567", "MSC", "MSC", "MEDU1234567"},
		{"swapped url", "https://track.example.com/x", "CMA CGM", "CMA CGM", "https://track.example.com/x"},
		{"swapped bill of lading", "HLCU12345678", "Hapag-Lloyd", "Hapag-Lloyd", "HLCU12345678"},
		{"carrier only", "MAERSK", "", "MAERSK", ""},
		{"placeholder tracking", "Hapag-Lloyd", "tba", "Hapag-Lloyd", "tba"},
		{"both look like tracking", "MEDU1234567", "MSKU7654321", "MEDU1234567", "MSKU7654321"},
		{"trims", "  MSC ", " MEDU1234567 ", "MSC", "MEDU1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carrier, tracking := ClassifyCarrierTracking(tt.first, tt.second)
			if carrier != tt.wantCarrier || tracking != tt.wantTracking {
				t.Errorf("ClassifyCarrierTracking(%q, %q) = (%q, %q), want (%q, %q)",
					tt.first, tt.second, carrier, tracking, tt.wantCarrier, tt.wantTracking)
			}
		})
	}
}

func TestIsPlaceholderTracking(t *testing.T) {
	placeholders := []string{"", " ", "-", "N/A", "TBA", "لا يوجد", "0"}
	for _, s := range placeholders {
		if !IsPlaceholderTracking(s) {
			t.Errorf("IsPlaceholderTracking(%q) = false, want true", s)
		}
	}

	real := []string{"MEDU1234567", "https://track.example.com/x", "BL 998877"}
	for _, s := range real {
		if IsPlaceholderTracking(s) {
			t.Errorf("IsPlaceholderTracking(%q) = true, want false", s)
		}
	}
}

func TestBaseContractNumber(t *testing.T) {
	tests := map[string]string{
		"390":    "390",
		"390-A":  "390",
		"255-1":  "255",
		"390_2":  "390",
		"٣٩٠-ب":  "390",
		"ABC":    "ABC",
		"ROW-12": "ROW-12",
	}
	for in, want := range tests {
		if got := BaseContractNumber(in); got != want {
			t.Errorf("BaseContractNumber(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFreeTime(t *testing.T) {
	tests := map[string]int{
		"14 يوم":  14,
		"21 days": 21,
		"١٤":      14,
		"":        0,
		"بدون":    0,
	}
	for in, want := range tests {
		if got := ParseFreeTime(in); got != want {
			t.Errorf("ParseFreeTime(%q) = %d, want %d", in, got, want)
		}
	}
}
