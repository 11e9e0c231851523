package dispatch

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/example/tour-matching/internal/geo"
	"github.com/example/tour-matching/internal/models"
	"github.com/example/tour-matching/internal/observability"
	"github.com/example/tour-matching/internal/store"
)

// Offerer pushes an assignment to a driver's live session.
type Offerer interface {
	Offer(driverID string, offer AssignmentOffer) error
}

// Publisher receives a best-effort event after a successful dispatch.
type Publisher interface {
	PublishDriverAssigned(ctx context.Context, rideRequestID, driverID string) error
}

// AssignmentOffer is the payload pushed to an assigned driver.
type AssignmentOffer struct {
	RideRequestID       string  `json:"ride_request_id"`
	PickupLat           float64 `json:"pickup_lat"`
	PickupLng           float64 `json:"pickup_lng"`
	PickupLocationName  string  `json:"pickup_location_name"`
	DropoffLocationName string  `json:"dropoff_location_name"`
}

// Service assigns the nearest available driver to a ride request.
type Service struct {
	Store  store.Store
	Offers Offerer   // optional
	Events Publisher // optional
	Logger *slog.Logger
}

type rankedDriver struct {
	driver   models.Driver
	distance float64
}

// Dispatch loads every available driver, ranks them by planar degree-space
// distance to the pickup point, and claims the nearest. A driver lost to a
// concurrent dispatch between ranking and claiming is skipped in favor of the
// next candidate.
//
// Known gap, kept from the original flow: the driver claim and the ride
// update are two separate writes. A store failure after the claim leaves the
// driver unavailable with no ride assigned; there is no compensating rollback.
func (s *Service) Dispatch(ctx context.Context, rideRequestID string, pickupLat, pickupLng float64) (*models.Driver, *models.RideRequest, error) {
	start := time.Now()

	drivers, err := s.Store.AvailableDrivers(ctx)
	if err != nil {
		observability.DispatchesTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}
	observability.DriversAvailable.Set(float64(len(drivers)))
	if len(drivers) == 0 {
		observability.DispatchesTotal.WithLabelValues("no_drivers").Inc()
		return nil, nil, models.ErrNoDriversAvailable
	}

	ranked := make([]rankedDriver, 0, len(drivers))
	for _, d := range drivers {
		ranked = append(ranked, rankedDriver{driver: d, distance: geo.DriverDistance(&d, pickupLat, pickupLng)})
	}
	// Stable sort: equidistant drivers keep the store's return order.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })

	if math.IsInf(ranked[0].distance, 1) {
		observability.DispatchesTotal.WithLabelValues("no_located_drivers").Inc()
		return nil, nil, models.ErrNoLocatedDrivers
	}

	var claimed *models.Driver
	for i := range ranked {
		if math.IsInf(ranked[i].distance, 1) {
			break
		}
		ok, err := s.Store.ClaimDriver(ctx, ranked[i].driver.ID)
		if err != nil {
			observability.DispatchesTotal.WithLabelValues("error").Inc()
			return nil, nil, err
		}
		if ok {
			d := ranked[i].driver
			d.IsAvailable = false
			claimed = &d
			break
		}
		s.logger().Info("driver claimed concurrently, trying next candidate",
			"driver_id", ranked[i].driver.ID, "ride_request_id", rideRequestID)
	}
	if claimed == nil {
		observability.DispatchesTotal.WithLabelValues("no_drivers").Inc()
		return nil, nil, models.ErrNoDriversAvailable
	}

	ride, err := s.Store.AssignRide(ctx, rideRequestID, claimed.ID)
	if err != nil {
		observability.DispatchesTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	offer := AssignmentOffer{
		RideRequestID:       ride.ID,
		PickupLat:           ride.PickupLat,
		PickupLng:           ride.PickupLng,
		PickupLocationName:  ride.PickupLocationName,
		DropoffLocationName: ride.DropoffLocationName,
	}
	if s.Offers != nil {
		if err := s.Offers.Offer(claimed.ID, offer); err != nil {
			s.logger().Warn("assignment push failed", "driver_id", claimed.ID, "error", err)
		}
	}
	if s.Events != nil {
		if err := s.Events.PublishDriverAssigned(ctx, ride.ID, claimed.ID); err != nil {
			s.logger().Warn("publish driver_assigned failed", "ride_request_id", ride.ID, "error", err)
		}
	}

	observability.DispatchesTotal.WithLabelValues("ok").Inc()
	observability.DispatchLatency.Observe(time.Since(start).Seconds())
	return claimed, ride, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
