package routes

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"ref-image/internal/myhttp"
	"ref-image/internal/report"
	"ref-image/internal/reftest"
	"ref-image/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type CompareResponse struct {
	*report.Result
	Log string `json:"log,omitempty"`
}

// Compare handles a multipart form with "test" and "reference" PNG files.
// Logs of failed comparisons are kept in s when it is not nil.
func Compare(s storage.Storage, comparisons metric.Int64Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := myhttp.Logger(r.Context())

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		testImage, testName, err := formImage(r, "test")
		if err != nil {
			logger.Info(fmt.Sprintf("invalid test image: %s", err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		refImage, refName, err := formImage(r, "reference")
		if err != nil {
			logger.Info(fmt.Sprintf("invalid reference image: %s", err))
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		croppedTest, croppedRef, _ := reftest.Reconcile(testImage, refImage, logger)
		rtiTest := reftest.FromImage(croppedTest)
		rtiRef := reftest.FromImage(croppedRef)

		comparison := rtiTest.Compare(rtiRef)
		response := CompareResponse{
			Result: report.NewResult(testName, refName, comparison),
		}

		if c, ok := comparison.(reftest.NotEqual); ok {
			failure := report.NewFailure(testName, refName, c, rtiTest, rtiRef)
			log := failure.Bytes()
			response.Log = string(log)

			if s != nil {
				path, err := report.NewWriter(s, logKey(testName, refName, log)).Write(r.Context(), failure)
				if err != nil {
					logger.Error(fmt.Sprintf("failed to store difference log: %s", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				response.LogPath = path
			}
		}

		comparisons.Add(context.WithoutCancel(r.Context()), 1, metric.WithAttributes(
			attribute.Key("result").String(response.Result.Result),
		))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error(fmt.Sprintf("failed to encode response: %s", err))
		}
	}
}

func formImage(r *http.Request, field string) (image.Image, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	img, err := reftest.Decode(data)
	if err != nil {
		return nil, "", err
	}

	return img, header.Filename, nil
}

// logKey derives a storage key from both names and the log contents, so
// distinct failures never share a key.
func logKey(testName string, refName string, log []byte) string {
	h := sha256.New()
	h.Write([]byte(testName))
	h.Write([]byte{0})
	h.Write([]byte(refName))
	h.Write([]byte{0})
	h.Write(log)
	hash := fmt.Sprintf("%x", h.Sum(nil))[:16]
	return fmt.Sprintf("reftest/%s/%s.log", hash, time.Now().UTC().Format("20060102150405.000000000"))
}
