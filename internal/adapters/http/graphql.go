package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/terralawn/mowplan/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	configType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PlanConfig",
		Fields: graphql.Fields{
			"lane_width_m":               &graphql.Field{Type: graphql.Float},
			"obstacle_margin_m":          &graphql.Field{Type: graphql.Float},
			"mbb_orientation_offset_deg": &graphql.Field{Type: graphql.Float},
			"start_corner":               &graphql.Field{Type: graphql.Int},
		},
	})

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"config": &graphql.Field{Type: configType},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Plan",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"mission_id":  &graphql.Field{Type: graphql.String},
			"duration_ms": &graphql.Field{Type: graphql.Int},
			"coverage_fraction": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if plan, ok := p.Source.(*domain.Plan); ok {
						return plan.Result.CoverageFraction, nil
					}
					return nil, nil
				},
			},
			"travel_heading_deg": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if plan, ok := p.Source.(*domain.Plan); ok {
						return plan.Result.TravelHeadingDeg, nil
					}
					return nil, nil
				},
			},
			"path_vertices": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if plan, ok := p.Source.(*domain.Plan); ok {
						return len(plan.Result.MowPath), nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"missions": &graphql.Field{
				Type:        graphql.NewList(missionType),
				Description: "List stored missions",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					missions, _, err := deps.Missions.List(p.Context, limit, 0)
					return missions, err
				},
			},
			"mission": &graphql.Field{
				Type:        missionType,
				Description: "Get a mission by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Missions.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"plan": &graphql.Field{
				Type:        planType,
				Description: "Get a plan by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Plans.GetPlan(p.Context, p.Args["id"].(string))
				},
			},
			"latestPlan": &graphql.Field{
				Type:        planType,
				Description: "Newest plan for a mission",
				Args: graphql.FieldConfigArgument{
					"mission_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Plans.LatestPlan(p.Context, p.Args["mission_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
