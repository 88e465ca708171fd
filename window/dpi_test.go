package window

import "testing"

func TestLogicalToPhysical(t *testing.T) {
	tests := []struct {
		name  string
		size  LogicalSize
		scale float64
		want  PhysicalSize
	}{
		{"unit scale", LogicalSize{Width: 800, Height: 600}, 1.0, PhysicalSize{Width: 800, Height: 600}},
		{"hidpi", LogicalSize{Width: 800, Height: 600}, 2.0, PhysicalSize{Width: 1600, Height: 1200}},
		{"fractional scale rounds", LogicalSize{Width: 100, Height: 100}, 1.25, PhysicalSize{Width: 125, Height: 125}},
		{"rounds half up", LogicalSize{Width: 333, Height: 333}, 1.5, PhysicalSize{Width: 500, Height: 500}},
		{"zero", LogicalSize{}, 2.0, PhysicalSize{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.ToPhysical(tt.scale); got != tt.want {
				t.Errorf("ToPhysical(%v) = %+v, want %+v", tt.scale, got, tt.want)
			}
		})
	}
}

func TestPhysicalToLogical(t *testing.T) {
	size := PhysicalSize{Width: 1600, Height: 1200}
	got := size.ToLogical(2.0)
	if got.Width != 800 || got.Height != 600 {
		t.Errorf("ToLogical(2.0) = %+v, want 800x600", got)
	}
}

func TestPositionConversion(t *testing.T) {
	tests := []struct {
		name  string
		pos   LogicalPosition
		scale float64
		want  PhysicalPosition
	}{
		{"unit scale", LogicalPosition{X: 10, Y: 20}, 1.0, PhysicalPosition{X: 10, Y: 20}},
		{"hidpi", LogicalPosition{X: 10, Y: 20}, 2.0, PhysicalPosition{X: 20, Y: 40}},
		{"negative coordinates", LogicalPosition{X: -100, Y: -50}, 1.5, PhysicalPosition{X: -150, Y: -75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.ToPhysical(tt.scale); got != tt.want {
				t.Errorf("ToPhysical(%v) = %+v, want %+v", tt.scale, got, tt.want)
			}
		})
	}
}

func TestPhysicalValuesPassThrough(t *testing.T) {
	// physical values ignore the scale factor entirely
	size := PhysicalSize{Width: 640, Height: 480}
	if got := size.ToPhysical(3.0); got != size {
		t.Errorf("PhysicalSize.ToPhysical = %+v, want %+v", got, size)
	}
	pos := PhysicalPosition{X: 5, Y: 7}
	if got := pos.ToPhysical(0.5); got != pos {
		t.Errorf("PhysicalPosition.ToPhysical = %+v, want %+v", got, pos)
	}
}

func TestSizeInterfaceSatisfied(t *testing.T) {
	var sizes = []Size{
		LogicalSize{Width: 1, Height: 1},
		PhysicalSize{Width: 1, Height: 1},
	}
	for _, s := range sizes {
		if got := s.ToPhysical(1.0); got.Width != 1 || got.Height != 1 {
			t.Errorf("ToPhysical = %+v", got)
		}
	}
	var positions = []Position{
		LogicalPosition{X: 1, Y: 1},
		PhysicalPosition{X: 1, Y: 1},
	}
	for _, p := range positions {
		if got := p.ToPhysical(1.0); got.X != 1 || got.Y != 1 {
			t.Errorf("ToPhysical = %+v", got)
		}
	}
}
