package process

import "testing"

func TestPlanStream(t *testing.T) {
	inherit := PlanStream(-1, -1)
	if inherit.Mode != ModeInherit {
		t.Errorf("expected inherit, got %s", inherit.Mode)
	}
	if fd := inherit.ChildFD(Stdout); fd != -1 {
		t.Errorf("expected -1 for inherited stream, got %d", fd)
	}

	r := PlanStream(5, 6)
	if r.Mode != ModeRedirect {
		t.Fatalf("expected redirect, got %s", r.Mode)
	}
	if fd := r.ChildFD(Stdin); fd != 5 {
		t.Errorf("stdin should use the read end, got %d", fd)
	}
	if fd := r.ChildFD(Stdout); fd != 6 {
		t.Errorf("stdout should use the write end, got %d", fd)
	}
	if fd := r.ChildFD(Stderr); fd != 6 {
		t.Errorf("stderr should use the write end, got %d", fd)
	}
}

func TestPlanStream_PanicsOnHalfPair(t *testing.T) {
	tests := []struct {
		name        string
		read, write int
	}{
		{"read only", 3, -1},
		{"write only", -1, 4},
		{"below -1", -2, -2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for (%d, %d)", tc.read, tc.write)
				}
			}()
			PlanStream(tc.read, tc.write)
		})
	}
}

func TestPlan(t *testing.T) {
	req := NewRequest("true")
	req.Stdout = Pair{Read: 7, Write: 8}
	plan := Plan(req)

	if plan[Stdin].Mode != ModeInherit || plan[Stderr].Mode != ModeInherit {
		t.Errorf("expected stdin and stderr inherited, got %+v", plan)
	}
	if plan[Stdout].ChildFD(Stdout) != 8 {
		t.Errorf("expected stdout from fd 8, got %d", plan[Stdout].ChildFD(Stdout))
	}
	if !plan.Redirected() {
		t.Error("expected plan to report a redirect")
	}
	if Plan(NewRequest("true")).Redirected() {
		t.Error("expected all-inherit plan")
	}
}

func TestStreamString(t *testing.T) {
	if Stderr.String() != "stderr" {
		t.Errorf("unexpected name %q", Stderr.String())
	}
	if Stream(9).String() != "stream(9)" {
		t.Errorf("unexpected name %q", Stream(9).String())
	}
}
