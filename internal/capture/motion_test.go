package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func filled(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 480, 640, gocv.MatTypeCV8UC3)
}

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit", threshold: 2.0, want: 2.0},
		{name: "zero takes default", threshold: 0, want: DefaultMotionThreshold},
		{name: "negative takes default", threshold: -1, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if md.threshold != tt.want {
				t.Errorf("threshold = %f, want %f", md.threshold, tt.want)
			}
		})
	}
}

func TestMotionDetector_StillScene(t *testing.T) {
	md := NewMotionDetector(0)
	defer md.Close()

	a := filled(40)
	defer a.Close()
	b := filled(40)
	defer b.Close()

	if moved, _ := md.Detect(&a); !moved {
		t.Error("first frame should report motion")
	}
	if moved, share := md.Detect(&b); moved {
		t.Errorf("identical frames reported motion, share = %f", share)
	}
}

func TestMotionDetector_SceneChange(t *testing.T) {
	md := NewMotionDetector(0)
	defer md.Close()

	black := filled(0)
	defer black.Close()
	white := filled(255)
	defer white.Close()

	md.Detect(&black)
	moved, share := md.Detect(&white)
	if !moved {
		t.Errorf("black to white not detected, share = %f", share)
	}
	if share < 99 {
		t.Errorf("share = %f, want about 100", share)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	md := NewMotionDetector(0)
	defer md.Close()

	f := filled(10)
	defer f.Close()

	md.Detect(&f)
	md.Detect(&f)
	md.Reset()

	if moved, _ := md.Detect(&f); !moved {
		t.Error("first frame after Reset should report motion")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(0)
	defer md.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if moved, _ := md.Detect(&empty); moved {
		t.Error("empty frame reported motion")
	}
	if moved, _ := md.Detect(nil); moved {
		t.Error("nil frame reported motion")
	}
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1)
	md.Close()
	md.Close()
}
