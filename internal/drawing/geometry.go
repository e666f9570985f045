package drawing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alberti/alberti/backend-go/internal/document"
	"github.com/alberti/alberti/backend-go/internal/geometry"
)

type intersectRequest struct {
	Shapes [2]document.ShapeNode `json:"shapes"`
}

type tangentsRequest struct {
	Point geometry.Point     `json:"point"`
	Shape document.ShapeNode `json:"shape"`
}

type pointsResponse struct {
	Points []geometry.Point `json:"points"`
}

// Intersect returns the intersection points of two shapes.
func Intersect(w http.ResponseWriter, r *http.Request) {
	var req intersectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var shapes [2]geometry.Shape
	for i, n := range req.Shapes {
		s, err := document.DecodeShape(n)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		shapes[i] = s
	}

	pts, err := geometry.Intersect(shapes[0], shapes[1])
	writePoints(w, pts, err)
}

// Tangents returns the points where lines through a point touch a curve.
func Tangents(w http.ResponseWriter, r *http.Request) {
	var req tangentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s, err := document.DecodeShape(req.Shape)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	pts, err := geometry.Tangents(&geometry.PointShape{At: req.Point}, s)
	writePoints(w, pts, err)
}

func writePoints(w http.ResponseWriter, pts []geometry.Point, err error) {
	if err != nil {
		if errors.Is(err, geometry.ErrUnsupportedPair) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		handleServiceError(w, err)
		return
	}
	if pts == nil {
		pts = []geometry.Point{}
	}
	writeJSON(w, http.StatusOK, pointsResponse{Points: pts})
}
