package serverutils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func userIdTestApp(locals interface{}) *fiber.App {
	app := fiber.New()
	app.Get("/whoami", func(ctx *fiber.Ctx) error {
		if locals != nil {
			ctx.Locals("user_id", locals)
		}
		userId, err := UserIdFromContext(ctx)
		if err != nil {
			appErr := err.(*AppError)
			return ctx.Status(appErr.Code).JSON(ErrorResponse(appErr.Code, appErr.Message))
		}
		return ctx.JSON(SuccessResponse("ok", userId.String()))
	})
	return app
}

func TestUserIdFromContext(t *testing.T) {
	validId := uuid.New()

	tests := []struct {
		name       string
		locals     interface{}
		wantStatus int
	}{
		{name: "valid uuid claim", locals: validId.String(), wantStatus: 200},
		{name: "missing claim", locals: nil, wantStatus: 401},
		{name: "malformed claim", locals: "not-a-uuid", wantStatus: 401},
		{name: "non-string claim", locals: 12345, wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := userIdTestApp(tt.locals)

			resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
