package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   getHandlerName(r.URL.Path, r.Method),
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.UserID = username
		}

		vars := mux.Vars(r)
		if strings.HasPrefix(r.URL.Path, "/orders/") {
			entry.OrderID = vars["id"]
		} else if strings.HasPrefix(r.URL.Path, "/shipments/") {
			entry.ShipmentID = vars["id"]
		}

		var requestBody []byte
		if r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if len(requestBody) > 0 {
				var bodyFields struct {
					Action  string `json:"action"`
					Status  string `json:"status"`
					OrderID string `json:"order_id"`
				}
				if err := json.Unmarshal(requestBody, &bodyFields); err == nil {
					entry.Action = bodyFields.Action
					if entry.OrderID == "" {
						entry.OrderID = bodyFields.OrderID
					}
					if entry.OrderID != "" && strings.HasSuffix(r.URL.Path, "/status") {
						entry.NewStatus = bodyFields.Status
						if order, found := s.cache.Get(entry.OrderID); found {
							entry.OldStatus = order.Status
						} else if order, err := s.orders.Get(r.Context(), entry.OrderID); err == nil {
							entry.OldStatus = order.Status
						}
					}
				}
			}
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func getHandlerName(path string, method string) string {
	if strings.HasPrefix(path, "/shipments") {
		if method == "POST" && strings.HasSuffix(path, "/actions") {
			return "handleShipmentAction"
		} else if method == "POST" {
			return "handleCreateShipment"
		} else if method == "GET" {
			return "handleGetShipment"
		}
	} else if strings.HasPrefix(path, "/orders") {
		if strings.HasSuffix(path, "/status") {
			return "handleUpdateOrderStatus"
		} else if strings.HasSuffix(path, "/history") {
			return "handleOrderHistory"
		} else if method == "GET" {
			return "handleGetOrder"
		}
	}

	return "unknown"
}
