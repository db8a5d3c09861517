package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/terralawn/mowplan/internal/adapters/missionfile"
	"github.com/terralawn/mowplan/internal/core/domain"
	"github.com/terralawn/mowplan/internal/pkg/geospatial"
)

// createMissionRequest is the POST /v1/missions body.
type createMissionRequest struct {
	Name      string            `json:"name"`
	Boundary  domain.Polygon    `json:"boundary"`
	Obstacles []domain.Polygon  `json:"obstacles"`
	Config    domain.PlanConfig `json:"config"`
}

// CreateMissionHandler stores a new mission.
func CreateMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMissionRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Name == "" {
			return errBadRequest(c, "name is required")
		}

		mission, err := deps.Missions.Create(c.UserContext(), &domain.Mission{
			Name:      req.Name,
			Boundary:  req.Boundary,
			Obstacles: req.Obstacles,
			Config:    req.Config,
		})
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(mission)
	}
}

// ImportMissionHandler accepts a vendor mission file and stores the
// converted mission. Planner settings come from query parameters,
// falling back to server defaults.
func ImportMissionHandler(deps *Dependencies, defaults domain.PlanConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, boundary, obstacles, err := missionfile.Read(bytes.NewReader(c.Body()))
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		cfg := defaults
		cfg.LaneWidthM = c.QueryFloat("lane_width_m", defaults.LaneWidthM)
		cfg.MBBOrientationOffsetDeg = c.QueryFloat("mbb_orientation_offset_deg", defaults.MBBOrientationOffsetDeg)
		cfg.StartCorner = c.QueryInt("start_corner", defaults.StartCorner)

		mission, err := deps.Missions.Create(c.UserContext(), &domain.Mission{
			Name:      name,
			Boundary:  boundary,
			Obstacles: obstacles,
			Config:    cfg,
		})
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(mission)
	}
}

// ListMissionsHandler returns missions with pagination.
func ListMissionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)

		missions, total, err := deps.Missions.List(c.UserContext(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: missions, Pagination: pg})
	}
}

// GetMissionHandler returns a single mission by ID.
func GetMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "mission id is required")
		}
		mission, err := deps.Missions.GetByID(c.UserContext(), id)
		if err != nil {
			return errNotFound(c, "mission not found")
		}
		return c.JSON(mission)
	}
}

// DeleteMissionHandler removes a mission.
func DeleteMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Missions.Delete(c.UserContext(), c.Params("id")); err != nil {
			return errNotFound(c, "mission not found")
		}
		return c.SendStatus(204)
	}
}

// PlanMissionHandler runs the planning pipeline synchronously for a
// mission and returns the persisted plan.
func PlanMissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "mission id is required")
		}
		plan, err := deps.Plans.PlanMission(c.UserContext(), id)
		if err != nil {
			return errPlanner(c, err)
		}
		return c.Status(201).JSON(plan)
	}
}

// GetPlanHandler returns a plan by ID.
func GetPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan, err := deps.Plans.GetPlan(c.UserContext(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "plan not found")
		}
		return c.JSON(plan)
	}
}

// LatestPlanHandler returns the newest plan for a mission.
func LatestPlanHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan, err := deps.Plans.LatestPlan(c.UserContext(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "no plan for mission")
		}
		return c.JSON(plan)
	}
}

// PlanGeoJSONHandler renders a plan as a GeoJSON FeatureCollection.
func PlanGeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan, err := deps.Plans.GetPlan(c.UserContext(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "plan not found")
		}
		c.Set("Cache-Control", "public, max-age=3600") // plans are immutable
		return c.JSON(PlanFeatureCollection(&plan.Result))
	}
}

// PlanWaypointsHandler converts a plan's mow path into the vendor
// waypoint list, home point first.
func PlanWaypointsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		plan, err := deps.Plans.GetPlan(c.UserContext(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "plan not found")
		}
		if len(plan.Result.MowPath) == 0 {
			return errNotFound(c, "plan has no mow path")
		}

		if c.Query("format") == "text" {
			var buf bytes.Buffer
			if err := missionfile.WriteWaypoints(&buf, plan.Result.MowPath, plan.Result.WorkingBoundary); err != nil {
				return errInternal(c, err.Error())
			}
			c.Set("Content-Type", "text/plain; charset=utf-8")
			return c.Send(buf.Bytes())
		}
		return c.JSON(fiber.Map{
			"home":      planHome(plan),
			"waypoints": missionfile.Waypoints(plan.Result.MowPath),
		})
	}
}

func planHome(plan *domain.Plan) domain.Point {
	// Home is the working boundary centroid, same point the text
	// stream leads with.
	return geospatial.Centroid(plan.Result.WorkingBoundary)
}
