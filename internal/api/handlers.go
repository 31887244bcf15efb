package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/litescript/ls-houses/internal/chart"
	"github.com/litescript/ls-houses/internal/houses"
	"github.com/litescript/ls-houses/internal/version"
)

// SystemInfo describes one supported house system.
type SystemInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PositionResponse is the body of /v1/position.
type PositionResponse struct {
	Chart     *chart.Chart    `json:"chart"`
	Placement chart.Placement `json:"placement"`
}

// chartQuery holds the parsed query of /v1/houses and /v1/position.
type chartQuery struct {
	req      chart.Request
	fallback houses.FallbackPolicy
	units    chart.Units
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	return &v, nil
}

func parseChartQuery(c *fiber.Ctx, deps *Dependencies) (chartQuery, error) {
	var q chartQuery

	sys, err := houses.ParseSystem(c.Query("system", deps.Chart.System))
	if err != nil {
		return q, err
	}
	q.fallback, err = houses.ParseFallback(c.Query("fallback", deps.Chart.Fallback))
	if err != nil {
		return q, err
	}
	q.units, err = chart.ParseUnits(c.Query("units", deps.Chart.Units))
	if err != nil {
		return q, err
	}

	q.req = chart.Request{
		Name:      c.Query("name"),
		System:    sys,
		Latitude:  deps.Chart.Latitude,
		Longitude: deps.Chart.Longitude,
	}
	if lat, err := queryFloat(c, "lat"); err != nil {
		return q, err
	} else if lat != nil {
		q.req.Latitude = *lat
	}
	if lon, err := queryFloat(c, "lon"); err != nil {
		return q, err
	} else if lon != nil {
		q.req.Longitude = *lon
	}
	if q.req.ARMC, err = queryFloat(c, "armc"); err != nil {
		return q, err
	}
	if q.req.Obliquity, err = queryFloat(c, "eps"); err != nil {
		return q, err
	}
	if raw := c.Query("time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, fmt.Errorf("time: %q is not RFC 3339", raw)
		}
		q.req.Time = &t
	}
	return q, nil
}

// compute runs a chart request and records metrics and session events.
func compute(deps *Dependencies, req chart.Request, fallback houses.FallbackPolicy) (*chart.Chart, error) {
	start := time.Now()
	c, err := deps.service(fallback).Compute(req)
	elapsed := time.Since(start)

	sys := req.System
	if sys == 0 {
		sys = houses.Placidus
	}

	switch {
	case errors.Is(err, houses.ErrGeometricallyUndefined):
		ComputationsTotal.WithLabelValues(sys.Code(), "undefined").Inc()
		if deps.State != nil {
			in, _ := req.Inputs()
			deps.State.Update(in, houses.Houses{Requested: sys}, elapsed, err)
		}
		return nil, err
	case err != nil:
		ComputationsTotal.WithLabelValues(sys.Code(), "error").Inc()
		return nil, err
	case c.FellBack():
		ComputationsTotal.WithLabelValues(sys.Code(), "fallback").Inc()
	default:
		ComputationsTotal.WithLabelValues(sys.Code(), "ok").Inc()
	}

	if deps.State != nil {
		deps.State.Update(c.Inputs(), c.Houses(), elapsed, c.Undefined())
	}
	return c, nil
}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		storeStatus := "not configured"
		if deps.Store != nil {
			if _, err := deps.Store.Count(c.UserContext()); err != nil {
				storeStatus = "error: " + err.Error()
			} else {
				storeStatus = "ok"
			}
		}
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version.Version,
			"store":   storeStatus,
		})
	}
}

// SystemsHandler lists the supported house systems.
func SystemsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := make([]SystemInfo, 0, len(houses.Systems))
		for _, sys := range houses.Systems {
			out = append(out, SystemInfo{Code: sys.Code(), Name: sys.String()})
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(out)
	}
}

// HousesHandler computes a chart from query parameters without storing it.
func HousesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseChartQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ch, err := compute(deps, q.req, q.fallback)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ch.In(q.units))
	}
}

// PositionHandler places the ecliptic point (elon, elat) in a chart built
// from the same query parameters as HousesHandler.
func PositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := parseChartQuery(c, deps)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		elon, err := queryFloat(c, "elon")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if elon == nil {
			return errBadRequest(c, "elon is required")
		}
		elat, err := queryFloat(c, "elat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if elat == nil {
			elat = new(float64)
		}

		ch, err := compute(deps, q.req, q.fallback)
		if err != nil {
			return errFrom(c, err)
		}
		pl, err := deps.service(q.fallback).Place(ch, *elon, *elat)
		if err != nil {
			return errFrom(c, err)
		}

		if pl.Degenerate() {
			DegeneratePositions.WithLabelValues(ch.System.Code()).Inc()
			if deps.State != nil {
				deps.State.RecordPlacement(ch.System, pl.Longitude,
					houses.Placement{Value: pl.Position, Diagnostic: pl.Diagnostic})
			}
		}
		return c.JSON(PositionResponse{Chart: ch.In(q.units), Placement: pl.In(q.units)})
	}
}

// EventsHandler returns the most recent session events.
func EventsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.State == nil {
			return c.JSON([]any{})
		}
		limit := c.QueryInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		events := deps.State.RecentEvents(limit)
		if events == nil {
			return c.JSON([]any{})
		}
		return c.JSON(events)
	}
}

// createChartBody is the JSON body of POST /v1/charts.
type createChartBody struct {
	Name      string     `json:"name"`
	Time      *time.Time `json:"time"`
	ARMC      *float64   `json:"armc"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Obliquity *float64   `json:"obliquity"`
	System    string     `json:"system"`
	Fallback  string     `json:"fallback"`
}

// CreateChartHandler computes a chart and stores it in the journal.
func CreateChartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Store == nil {
			return errUnavailable(c, "chart store not configured")
		}

		var body createChartBody
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid JSON body: "+err.Error())
		}
		if body.System == "" {
			body.System = deps.Chart.System
		}
		if body.Fallback == "" {
			body.Fallback = deps.Chart.Fallback
		}

		sys, err := houses.ParseSystem(body.System)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		fallback, err := houses.ParseFallback(body.Fallback)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		req := chart.Request{
			Name:      body.Name,
			Time:      body.Time,
			ARMC:      body.ARMC,
			Latitude:  deps.Chart.Latitude,
			Longitude: deps.Chart.Longitude,
			Obliquity: body.Obliquity,
			System:    sys,
		}
		if body.Latitude != nil {
			req.Latitude = *body.Latitude
		}
		if body.Longitude != nil {
			req.Longitude = *body.Longitude
		}

		ch, err := compute(deps, req, fallback)
		if err != nil {
			return errFrom(c, err)
		}
		if err := deps.Store.Save(c.UserContext(), ch); err != nil {
			return errInternal(c, err.Error())
		}
		deps.logger().Info("saved chart %s (%s)", ch.ID, ch.System)
		return c.Status(fiber.StatusCreated).JSON(ch)
	}
}

// ListChartsHandler returns stored charts, newest first.
func ListChartsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Store == nil {
			return errUnavailable(c, "chart store not configured")
		}
		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		charts, err := deps.Store.List(c.UserContext(), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(charts)
	}
}

// GetChartHandler returns one stored chart.
func GetChartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Store == nil {
			return errUnavailable(c, "chart store not configured")
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return errBadRequest(c, "invalid chart id")
		}
		units, err := chart.ParseUnits(c.Query("units", deps.Chart.Units))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		ch, err := deps.Store.Get(c.UserContext(), id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(ch.In(units))
	}
}

// DeleteChartHandler removes a stored chart.
func DeleteChartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Store == nil {
			return errUnavailable(c, "chart store not configured")
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return errBadRequest(c, "invalid chart id")
		}
		if err := deps.Store.Delete(c.UserContext(), id); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
