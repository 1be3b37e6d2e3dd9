package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// SessionCookieName is the cookie carrying the session identifier.
const SessionCookieName = "session_id"

// AuthControllerRoutes holds the route paths the controller binds.
type AuthControllerRoutes struct {
	Welcome       string
	Users         string
	Sessions      string
	Profile       string
	ResetPassword string
}

// AuthController exposes the auth operations over HTTP: form-encoded
// requests in, JSON out, with the session identifier in a cookie.
type AuthController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Routes *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Welcome:       "/",
			Users:         "/users",
			Sessions:      "/sessions",
			Profile:       "/profile",
			ResetPassword: "/reset_password",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// WithAuther sets the authenticator the controller calls into.
func WithAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithDebug enables verbose payload dumps.
func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// RegisterAuthRoutes binds the controller to the fiber app.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Get(controller.Routes.Welcome, controller.Welcome).Name("welcome.get")

	app.Post(controller.Routes.Users, controller.UsersCreate).Name("users.post")

	app.Post(controller.Routes.Sessions, controller.SessionsCreate).Name("sessions.post")
	app.Delete(controller.Routes.Sessions, controller.SessionsDestroy).Name("sessions.delete")

	app.Get(controller.Routes.Profile, controller.ProfileShow).Name("profile.get")

	app.Post(controller.Routes.ResetPassword, controller.ResetPasswordCreate).Name("pwd-reset.post")
	app.Put(controller.Routes.ResetPassword, controller.ResetPasswordUpdate).Name("pwd-reset.put")

	return controller
}

// CredentialsPayload is the form payload for registration and login.
type CredentialsPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"-"`
}

// Validate will run validation rules
func (r CredentialsPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// ResetRequestPayload is the form payload requesting a reset token.
type ResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetUpdatePayload is the form payload redeeming a reset token.
type ResetUpdatePayload struct {
	Email       string `form:"email" json:"email"`
	ResetToken  string `form:"reset_token" json:"reset_token"`
	NewPassword string `form:"new_password" json:"-"`
}

// Validate will run validation rules
func (r ResetUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ResetToken, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

// Welcome greets unauthenticated callers.
func (a *AuthController) Welcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Bienvenue"})
}

// UsersCreate registers a new user.
func (a *AuthController) UsersCreate(c *fiber.Ctx) error {
	payload := new(CredentialsPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	a.debugDump("USERS CREATE", payload)

	if _, err := a.Auther.RegisterUser(c.Context(), payload.Email, payload.Password); err != nil {
		if IsConflict(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already registered"})
		}
		a.Logger.Error("register user failed", "email", payload.Email, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"email": payload.Email, "message": "User created"})
}

// SessionsCreate logs a user in and sets the session cookie.
func (a *AuthController) SessionsCreate(c *fiber.Ctx) error {
	payload := new(CredentialsPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	ok, err := a.Auther.ValidLogin(c.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login check failed", "email", payload.Email, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	sessionID, err := a.Auther.CreateSession(c.Context(), payload.Email)
	if err != nil {
		a.Logger.Error("session create failed", "email", payload.Email, "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	if sessionID == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"email": payload.Email, "message": "Logged in"})
}

// SessionsDestroy logs a user out, destroying the cookie session.
func (a *AuthController) SessionsDestroy(c *fiber.Ctx) error {
	user, err := a.Auther.GetUserFromSessionID(c.Context(), c.Cookies(SessionCookieName))
	if err != nil || user == nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	if err := a.Auther.DestroySession(c.Context(), user.ID); err != nil {
		a.Logger.Error("session destroy failed", "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.ClearCookie(SessionCookieName)

	return c.Redirect(a.Routes.Welcome, fiber.StatusFound)
}

// ProfileShow returns the email of the session's user.
func (a *AuthController) ProfileShow(c *fiber.Ctx) error {
	user, err := a.Auther.GetUserFromSessionID(c.Context(), c.Cookies(SessionCookieName))
	if err != nil || user == nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	return c.JSON(fiber.Map{"email": user.Email})
}

// ResetPasswordCreate responds with a reset token.
func (a *AuthController) ResetPasswordCreate(c *fiber.Ctx) error {
	payload := new(ResetRequestPayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	token, err := a.Auther.GetResetPasswordToken(c.Context(), payload.Email)
	if err != nil || token == "" {
		return c.SendStatus(fiber.StatusForbidden)
	}

	a.debugDump("RESET TOKEN ISSUED", payload)

	return c.JSON(fiber.Map{"email": payload.Email, "reset_token": token})
}

// ResetPasswordUpdate redeems a reset token and stores the new password.
func (a *AuthController) ResetPasswordUpdate(c *fiber.Ctx) error {
	payload := new(ResetUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if err := payload.Validate(); err != nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	if err := a.Auther.UpdatePassword(c.Context(), payload.ResetToken, payload.NewPassword); err != nil {
		return c.SendStatus(fiber.StatusForbidden)
	}

	return c.JSON(fiber.Map{"email": payload.Email, "message": "Password updated"})
}

func (a *AuthController) debugDump(label string, payload any) {
	if !a.Debug {
		return
	}
	fmt.Printf("======= %s ======\n", label)
	fmt.Println(print.MaybePrettyJSON(payload))
	fmt.Println("=========================")
}
