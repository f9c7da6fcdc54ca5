package handlers

import (
	"errors"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	localToken     = "user"
	localUserID    = "userID"
	localRole      = "role"
	localRequestID = "requestid"
)

var errNoSubject = errors.New("no user id in token")

// Authenticate verifies the bearer token and stores the caller's id and role
// in the request locals. Tokens are issued elsewhere.
func Authenticate(secret []byte) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    secret,
		SigningMethod: "HS256",
		ContextKey:    localToken,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "invalid or expired token")
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(localToken).(*jwt.Token)
			if !ok {
				return unauthorized(c, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "invalid token claims")
			}
			userID, err := extractUserID(claims)
			if err != nil {
				return unauthorized(c, "invalid user id in token")
			}
			role, _ := claims["role"].(string)
			c.Locals(localUserID, userID)
			c.Locals(localRole, model.Role(role))
			return c.Next()
		},
	})
}

// extractUserID reads "id", falling back to the registered "sub" claim.
func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"id", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return uuid.Parse(v)
		}
	}
	return uuid.Nil, errNoSubject
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(Response{
		Message: message,
		Reason:  apperr.ReasonUnauthenticated,
	})
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !slices.Contains(roles, actorRole(c)) {
			return apperr.Forbidden(apperr.ReasonRoleMismatch, "this endpoint is not available for your role")
		}
		return c.Next()
	}
}

// AccessLog writes one line per request.
func AccessLog(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Render now so the logged status is the one the client sees.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				c.Status(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		}
		if rid, ok := c.Locals(localRequestID).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if id := actorID(c); id != uuid.Nil {
			fields = append(fields, zap.String("user_id", id.String()))
		}

		status := c.Response().StatusCode()
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
		return nil
	}
}

// headerCarrier adapts fiber request headers for otel propagation.
type headerCarrier struct{ c *fiber.Ctx }

func (h headerCarrier) Get(key string) string { return h.c.Get(key) }
func (h headerCarrier) Set(key, value string) { h.c.Request().Header.Set(key, value) }

func (h headerCarrier) Keys() []string {
	headers := h.c.GetReqHeaders()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}

// Tracing starts a server span per request and hands its context to handlers
// through UserContext.
func Tracing(serviceName string) fiber.Handler {
	tracer := otel.Tracer("github.com/mentalist/counseling_backend/internal/controller")
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), headerCarrier{c})
		ctx, span := tracer.Start(ctx, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
			),
		)
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		if route := c.Route(); route != nil {
			span.SetName(c.Method() + " " + route.Path)
			span.SetAttributes(attribute.String("http.route", route.Path))
		}
		if err != nil {
			span.RecordError(err)
			if apperr.KindOf(err) == "" {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		return err
	}
}
