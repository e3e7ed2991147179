package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fleamart/internal/auth"
	"fleamart/internal/config"
	apperrors "fleamart/internal/errors"
	"fleamart/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	itemHandler *handler.ItemHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		}))
	}

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Every error leaves through the {status, message} envelope; internal
	// detail stays in the log.
	e.HTTPErrorHandler = envelopeErrorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.GET("/", itemHandler.ListItems)
	e.GET("/items", itemHandler.ListItemsWithNames)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/refresh", authHandler.Refresh)
	e.POST("/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := e.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.POST("/sell", itemHandler.Sell)
	secured.PATCH("/sell", itemHandler.Update)
	secured.DELETE("/sell", itemHandler.Delete)
	secured.PATCH("/buy", itemHandler.Buy)

	// Maintenance routes, enabled only when a key is configured. The key
	// travels in the Authorization header, never in a request body.
	if cfg.AdminAPIKey != "" {
		admin := e.Group("/admin", middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
			return key == cfg.AdminAPIKey, nil
		}))
		admin.DELETE("/users/:name", authHandler.DeleteAccount)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// envelopeErrorHandler renders errors raised by middleware or escaping
// handlers in the standard envelope.
func envelopeErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal Server Error"

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else if he, ok := err.(*apperrors.HTTPError); ok {
		status = he.StatusCode
		message = he.Message
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Error(err)
		message = "Internal Server Error"
	}

	envelope := apperrors.NewHTTPError(status, message).ToErrorResponse()
	if err := c.JSON(status, envelope); err != nil {
		c.Logger().Error(err)
	}
}
