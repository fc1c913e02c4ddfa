// Package compositor overlays the canvas raster on the camera frame.
package compositor

import (
	"image"

	"gocv.io/x/gocv"
)

// Composite returns a new frame showing snapshot wherever any of its
// channels is non-zero and video elsewhere. A snapshot of a different size
// is resized to the video with nearest-neighbour sampling first. The caller
// must Close the result.
func Composite(video, snapshot gocv.Mat) gocv.Mat {
	out := video.Clone()
	if video.Empty() || snapshot.Empty() {
		return out
	}

	src := snapshot
	if snapshot.Rows() != video.Rows() || snapshot.Cols() != video.Cols() {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(snapshot, &resized, image.Pt(video.Cols(), video.Rows()), 0, 0, gocv.InterpolationNearestNeighbor)
		src = resized
	}

	background := gocv.NewMat()
	defer background.Close()
	zero := gocv.NewScalar(0, 0, 0, 0)
	gocv.InRangeWithScalar(src, zero, zero, &background)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.BitwiseNot(background, &mask)

	src.CopyToWithMask(&out, mask)
	return out
}
