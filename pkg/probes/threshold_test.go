package probes

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		value    uint64
		warning  uint64
		critical uint64
		want     Status
	}{
		{name: "below warning", value: 799, warning: 800, critical: 1024, want: StatusHealthy},
		{name: "exactly warning", value: 800, warning: 800, critical: 1024, want: StatusDegraded},
		{name: "between warning and critical", value: 900, warning: 800, critical: 1024, want: StatusDegraded},
		{name: "exactly critical", value: 1024, warning: 800, critical: 1024, want: StatusUnhealthy},
		{name: "above critical", value: 1500, warning: 800, critical: 1024, want: StatusUnhealthy},
		{name: "zero value", value: 0, warning: 800, critical: 1024, want: StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.value, tt.warning, tt.critical); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateInverted(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		warning  int
		critical int
		want     Status
	}{
		{name: "far from expiry", days: 20, warning: 15, critical: 10, want: StatusHealthy},
		{name: "just above warning", days: 16, warning: 15, critical: 10, want: StatusHealthy},
		{name: "exactly warning", days: 15, warning: 15, critical: 10, want: StatusDegraded},
		{name: "between warning and critical", days: 14, warning: 15, critical: 10, want: StatusDegraded},
		{name: "exactly critical", days: 10, warning: 15, critical: 10, want: StatusUnhealthy},
		{name: "below critical", days: 9, warning: 15, critical: 10, want: StatusUnhealthy},
		{name: "already expired", days: -3, warning: 15, critical: 10, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateInverted(tt.days, tt.warning, tt.critical); got != tt.want {
				t.Errorf("EvaluateInverted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name string
		a    Status
		b    Status
		want Status
	}{
		{name: "both healthy", a: StatusHealthy, b: StatusHealthy, want: StatusHealthy},
		{name: "degraded beats healthy", a: StatusDegraded, b: StatusHealthy, want: StatusDegraded},
		{name: "unhealthy beats degraded", a: StatusDegraded, b: StatusUnhealthy, want: StatusUnhealthy},
		{name: "order does not matter", a: StatusUnhealthy, b: StatusHealthy, want: StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.a, tt.b); got != tt.want {
				t.Errorf("Worst() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBytesToMegabytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  uint64
	}{
		{name: "zero", bytes: 0, want: 0},
		{name: "exact megabyte", bytes: 1 << 20, want: 1},
		{name: "exact 800MB", bytes: 800 << 20, want: 800},
		{name: "one byte above 800MB rounds up", bytes: 838_860_801, want: 801},
		{name: "one byte below a full megabyte rounds up", bytes: (1 << 20) - 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BytesToMegabytes(tt.bytes); got != tt.want {
				t.Errorf("BytesToMegabytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMegabytesToBytes(t *testing.T) {
	tests := []struct {
		name string
		mb   uint64
		want uint64
	}{
		{name: "zero", mb: 0, want: 0},
		{name: "one", mb: 1, want: 1_048_576},
		{name: "800", mb: 800, want: 838_860_800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MegabytesToBytes(tt.mb); got != tt.want {
				t.Errorf("MegabytesToBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Conversion asymmetry: configured thresholds convert exactly, measured
// values convert with ceiling rounding for display.
func TestConversionAsymmetry(t *testing.T) {
	threshold := MegabytesToBytes(800)
	if got := BytesToMegabytes(threshold); got != 800 {
		t.Errorf("round trip of exact threshold = %v, want 800", got)
	}
	if got := BytesToMegabytes(threshold + 1); got != 801 {
		t.Errorf("display of threshold+1 byte = %v, want 801", got)
	}
}
