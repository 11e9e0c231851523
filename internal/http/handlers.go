package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/example/tour-matching/internal/models"
)

type dispatchRequest struct {
	RideRequestID string  `json:"rideRequestId"`
	PickupLat     float64 `json:"pickupLat"`
	PickupLng     float64 `json:"pickupLng"`
}

type dispatchResponse struct {
	Success     bool                `json:"success"`
	Driver      *models.Driver      `json:"driver"`
	RideRequest *models.RideRequest `json:"rideRequest"`
}

func (s *Server) handleDispatchDriver(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RideRequestID == "" {
		writeError(w, http.StatusBadRequest, "rideRequestId is required")
		return
	}

	driver, ride, err := s.Dispatcher.Dispatch(r.Context(), req.RideRequestID, req.PickupLat, req.PickupLng)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoDriversAvailable):
			writeError(w, http.StatusNotFound, "No available drivers found")
		case errors.Is(err, models.ErrNoLocatedDrivers):
			writeError(w, http.StatusNotFound, "No drivers with valid locations found")
		default:
			s.reqLogger(r.Context()).Error("dispatch failed", "ride_request_id", req.RideRequestID, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, dispatchResponse{Success: true, Driver: driver, RideRequest: ride})
}

func (s *Server) handleFindMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := s.Auth.UserIDFromRequest(r)
	if err != nil {
		// The legacy endpoint surfaced unauthenticated callers as a generic
		// failure rather than a 401; clients depend on that.
		writeError(w, http.StatusInternalServerError, "User not authenticated")
		return
	}

	matches, err := s.Matcher.FindMatches(r.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrEmbeddingNotFound) {
			writeError(w, http.StatusNotFound, "User embedding not found. Please generate embeddings first.")
			return
		}
		s.reqLogger(r.Context()).Error("match computation failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleGenerateEmbeddings(w http.ResponseWriter, r *http.Request) {
	userID, err := s.Auth.UserIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "User not authenticated")
		return
	}
	if s.Embeddings == nil {
		writeError(w, http.StatusInternalServerError, "embedding generator not configured")
		return
	}
	if _, err := s.Embeddings.Generate(r.Context(), userID); err != nil {
		s.reqLogger(r.Context()).Error("embedding generation failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Embeddings generated successfully"})
}

func (s *Server) handleDriverLocation(w http.ResponseWriter, r *http.Request) {
	var upd models.DriverLocationUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.DriverID == "" {
		writeError(w, http.StatusBadRequest, "driver_id is required")
		return
	}
	// With Kafka configured the update flows through the location consumer;
	// otherwise apply it directly.
	if s.Events != nil {
		if err := s.Events.PublishDriverLocation(r.Context(), upd); err != nil {
			s.reqLogger(r.Context()).Error("publish driver location failed", "driver_id", upd.DriverID, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else if err := s.Store.UpdateDriverLocation(r.Context(), upd.DriverID, upd.LocationLat, upd.LocationLng); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	driverID := mux.Vars(r)["driver_id"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.WSReg.Add(driverID, conn)
	// Drain reads so we notice the peer going away.
	go func() {
		defer func() {
			s.WSReg.Remove(driverID)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
