// Package openapi renders an OpenAPI 3 document for the mounted resources.
package openapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/resource-router/internal/crud"
	"github.com/iliyamo/resource-router/internal/schema"
)

// Info is the document's info block.
type Info struct {
	Title   string
	Version string
}

// Resource is satisfied by every *crud.Router.
type Resource interface {
	Descriptor() crud.ResourceDescriptor
	Routes() []crud.RouteEntry
}

var idFormats = map[crud.IdentifierKind]map[string]any{
	crud.KindInteger: {"type": "integer", "format": "int64"},
	crud.KindString:  {"type": "string"},
	crud.KindUUID:    {"type": "string", "format": "uuid"},
}

// Build assembles the document from the route tables of resources.
func Build(info Info, resources ...Resource) map[string]any {
	paths := map[string]any{}
	components := map[string]any{}

	for _, res := range resources {
		d := res.Descriptor()
		for _, rt := range res.Routes() {
			item, _ := paths[rt.Pattern].(map[string]any)
			if item == nil {
				item = map[string]any{}
				paths[rt.Pattern] = item
			}
			item[strings.ToLower(rt.Method)] = operation(d, rt, components)
		}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   info.Title,
			"version": info.Version,
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": components,
			"securitySchemes": map[string]any{
				"bearerAuth": map[string]any{"type": "http", "scheme": "bearer", "bearerFormat": "UUID"},
			},
		},
		"security": []any{map[string]any{"bearerAuth": []any{}}},
	}
}

func operation(d crud.ResourceDescriptor, rt crud.RouteEntry, components map[string]any) map[string]any {
	op := map[string]any{
		"operationId": d.URLPrefix + "_" + string(rt.Operation),
		"tags":        []any{d.URLPrefix},
		"summary":     summary(d, rt.Operation),
	}

	responses := map[string]any{
		"401": errorResponse("Missing or invalid bearer token"),
	}
	ok := map[string]any{"description": "Successful response"}
	if rt.ResponseSchema != nil {
		ok["content"] = jsonContent(ref(rt.ResponseSchema, components))
	}
	responses[strconv.Itoa(rt.SuccessStatus)] = ok

	if strings.Contains(rt.Pattern, "{id}") {
		op["parameters"] = []any{map[string]any{
			"name":     "id",
			"in":       "path",
			"required": true,
			"schema":   idFormats[d.IdentifierKind],
		}}
		responses["404"] = errorResponse("Record not found")
		responses["422"] = errorResponse("Invalid identifier or payload")
	}
	if rt.RequestSchema != nil {
		op["requestBody"] = map[string]any{
			"required": rt.Operation != crud.OpPartialUpdate,
			"content":  jsonContent(ref(rt.RequestSchema, components)),
		}
		responses["422"] = errorResponse("Invalid identifier or payload")
	}
	op["responses"] = responses
	return op
}

// ref registers the schema under components and returns a reference to it.
// Sequences reference their item schema.
func ref(s *schema.Schema, components map[string]any) map[string]any {
	if s.IsList() {
		return map[string]any{"type": "array", "items": ref(s.Item(), components)}
	}
	if _, ok := components[s.Name()]; !ok {
		components[s.Name()] = s.Describe()
	}
	return map[string]any{"$ref": "#/components/schemas/" + s.Name()}
}

func jsonContent(s map[string]any) map[string]any {
	return map[string]any{echo.MIMEApplicationJSON: map[string]any{"schema": s}}
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": jsonContent(map[string]any{
			"type":       "object",
			"properties": map[string]any{"error": map[string]any{"type": "string"}},
		}),
	}
}

func summary(d crud.ResourceDescriptor, op crud.Operation) string {
	name := d.ModelName
	switch op {
	case crud.OpRetrieve:
		return "Retrieve a " + name
	case crud.OpList:
		return "List " + name + " records"
	case crud.OpCreate:
		return "Create a " + name
	case crud.OpUpdate:
		return "Replace a " + name
	case crud.OpPartialUpdate:
		return "Update fields of a " + name
	default:
		return "Delete a " + name
	}
}

// JSONHandler serves doc as JSON.
func JSONHandler(doc map[string]any) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	}
}

// YAMLHandler serves doc as YAML. The document is encoded once; map keys
// come out sorted.
func YAMLHandler(doc map[string]any) (echo.HandlerFunc, error) {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", raw)
	}, nil
}
