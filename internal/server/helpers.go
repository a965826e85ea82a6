package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/cwbudde/yuvsobel/internal/guard"
	"github.com/cwbudde/yuvsobel/internal/sobel"
	"github.com/cwbudde/yuvsobel/internal/store"
)

// DefaultThreshold is the edge level counted in result statistics.
const DefaultThreshold = 64

// gradientRequest holds the query parameters of POST /api/v1/gradients.
type gradientRequest struct {
	Width     int
	Height    int
	Region    sobel.Region
	Dir       sobel.Direction
	Crop      bool
	Quarter   bool
	Threshold uint8
}

func parseGradientRequest(q url.Values) (gradientRequest, error) {
	var req gradientRequest
	var err error

	if req.Width, err = strconv.Atoi(q.Get("width")); err != nil {
		return req, fmt.Errorf("width: %w", err)
	}
	if req.Height, err = strconv.Atoi(q.Get("height")); err != nil {
		return req, fmt.Errorf("height: %w", err)
	}

	if s := q.Get("region"); s != "" {
		if req.Region, err = sobel.ParseRegion(s); err != nil {
			return req, err
		}
	} else {
		req.Region = sobel.FrameRegion(req.Width, req.Height)
	}

	if req.Dir, err = sobel.ParseDirection(q.Get("direction")); err != nil {
		return req, err
	}
	if req.Crop, err = parseBool(q, "crop"); err != nil {
		return req, err
	}
	if req.Quarter, err = parseBool(q, "quarter"); err != nil {
		return req, err
	}

	req.Threshold = DefaultThreshold
	if s := q.Get("threshold"); s != "" {
		t, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return req, fmt.Errorf("threshold: %w", err)
		}
		req.Threshold = uint8(t)
	}
	return req, nil
}

func parseBool(q url.Values, key string) (bool, error) {
	s := q.Get(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func (req gradientRequest) geometry() guard.Geometry {
	return guard.Geometry{
		Width:   req.Width,
		Height:  req.Height,
		Region:  req.Region,
		Dir:     req.Dir,
		Quarter: req.Quarter,
	}
}

func (req gradientRequest) run(src []byte) *sobel.Grid {
	if req.Quarter {
		return sobel.Quarter(src, req.Region, req.Width, req.Height, req.Dir, req.Crop)
	}
	return sobel.Full(src, req.Region, req.Width, req.Height, req.Dir, req.Crop)
}

// readFrameBody reads the raw frame, decoding it when the client sent
// Content-Encoding: zstd. Both the wire and the decoded size are capped.
func readFrameBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	var src io.Reader = body
	switch enc := strings.ToLower(r.Header.Get("Content-Encoding")); enc {
	case "", "identity":
	case "zstd":
		dec, err := zstd.NewReader(body, zstd.WithDecoderMaxMemory(uint64(limit)))
		if err != nil {
			return nil, fmt.Errorf("invalid zstd body: %w", err)
		}
		defer dec.Close()
		src = io.LimitReader(dec, limit+1)
	default:
		return nil, fmt.Errorf("unsupported Content-Encoding %q", enc)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, &http.MaxBytesError{Limit: limit}
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Result not found", http.StatusNotFound)
		return
	}
	slog.Error("Store error", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
