package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"health-scatter/internal/chart"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/transition"
)

type pageData struct {
	View        chart.View
	InnerWidth  float64
	InnerHeight float64
	Duration    int64
	Fill        string
	Opacity     float64
}

// view builds the view for the ?x=&y= selection, writing a 400 on bad input.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (chart.View, bool) {
	q := r.URL.Query()
	sel, err := chart.ParseSelection(q.Get("x"), q.Get("y"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return chart.View{}, false
	}
	v, err := chart.Build(s.ds, sel, s.layout)
	if err != nil {
		logging.LogError("Failed to build view", zap.Error(err))
		http.Error(w, "failed to build chart", http.StatusInternalServerError)
		return chart.View{}, false
	}
	return v, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	data := pageData{
		View:        v,
		InnerWidth:  s.layout.InnerWidth(),
		InnerHeight: s.layout.InnerHeight(),
		Duration:    s.layout.TransitionMs(),
		Fill:        s.layout.Fill,
		Opacity:     s.layout.Opacity,
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		logging.LogError("Template error", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.LogWarn("Failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	if v, ok := s.view(w, r); ok {
		writeJSON(w, v)
	}
}

func (s *Server) handleAPILabels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	axis, err := chart.ParseAxis(q.Get("axis"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sel, err := chart.ParseSelection(q.Get("x"), q.Get("y"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, chart.Labels(axis, sel))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.raster.WritePNG(&buf, v); err != nil {
		logging.LogError("Failed to render png", zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.vector.WriteTo(&buf, v, "svg"); err != nil {
		logging.LogError("Failed to render svg", zap.Error(err))
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}

// handleChartGIF animates from ?x=&y= to ?to_x=&to_y=; an omitted to_ key
// keeps that axis, as a single label click does.
func (s *Server) handleChartGIF(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fromSel, err := chart.ParseSelection(q.Get("x"), q.Get("y"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	toSel, err := fromSel.With(q.Get("to_x"), q.Get("to_y"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if toSel == fromSel {
		http.Error(w, "to_x or to_y must change the selection", http.StatusBadRequest)
		return
	}
	frames := s.frames
	if raw := q.Get("frames"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 120 {
			http.Error(w, "frames must be between 1 and 120", http.StatusBadRequest)
			return
		}
		frames = n
	}

	var buf bytes.Buffer
	if err := s.animate(r.Context(), &buf, fromSel, toSel, frames); err != nil {
		if r.Context().Err() != nil {
			return
		}
		logging.LogError("Failed to render gif", zap.Error(err))
		http.Error(w, "failed to render animation", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Write(buf.Bytes())
}

// animate spreads the configured transition duration over frames.
func (s *Server) animate(ctx context.Context, w io.Writer, fromSel, toSel chart.Selection, frames int) error {
	from, err := chart.Build(s.ds, fromSel, s.layout)
	if err != nil {
		return err
	}
	to, err := chart.Build(s.ds, toSel, s.layout)
	if err != nil {
		return err
	}
	tw, err := transition.New(from, to, transition.CubicInOut)
	if err != nil {
		return err
	}
	delay := s.layout.Transition / time.Duration(frames)
	return s.raster.Animate(ctx, w, tw, frames, delay)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "rows": s.ds.Len()})
}
