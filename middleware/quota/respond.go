package quota

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func formatInt64(v int64) string { return strconv.FormatInt(v, 10) }
