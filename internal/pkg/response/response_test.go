package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestList_NilRendersEmpty(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error {
		var rows []string
		return List(c, "Projects", rows, fiber.Map{"stage": "lead"})
	})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []interface{}{}, out["data"])
	meta := out["metadata"].(map[string]interface{})
	assert.EqualValues(t, 0, meta["count"])
	assert.Equal(t, "lead", meta["stage"])
}

func TestList_Count(t *testing.T) {
	_, out := call(t, func(c *fiber.Ctx) error {
		return List(c, "Projects", []int{1, 2, 3}, nil)
	})
	assert.Len(t, out["data"], 3)
	assert.EqualValues(t, 3, out["metadata"].(map[string]interface{})["count"])
}

func TestSuccess_EmptyMetadata(t *testing.T) {
	_, out := call(t, func(c *fiber.Ctx) error { return Success(c, "ok", nil, nil) })
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, map[string]interface{}{}, out["metadata"])
}

func TestError_Envelope(t *testing.T) {
	code, out := call(t, func(c *fiber.Ctx) error { return Forbidden(c, "nope") })
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "error", out["status"])
	e := out["error"].(map[string]interface{})
	assert.Equal(t, "nope", e["message"])
	assert.EqualValues(t, fiber.StatusForbidden, e["statusCode"])
	assert.Equal(t, map[string]interface{}{}, e["details"])
}
