package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
)

type accountApi struct {
	svc      account.ServiceInterface
	auth     *Auth
	validate *validator.Validate
}

func registerAccountAPI(
	g *echo.Group,
	auth *Auth,
	svc account.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	account.RegisterValidators(validate, translator)

	api := accountApi{
		svc:      svc,
		auth:     auth,
		validate: validate,
	}

	// un-authed endpoints
	g.POST("/register", api.register)
	g.POST("/login", api.login)

	// authed endpoints
	ag := g.Group("", auth.Middleware())
	ag.GET("/me", api.me)
	ag.GET("/student/dashboard", api.studentDashboard)
	ag.POST("/students/update", api.updateStanding)
	ag.POST("/students/complete-drill", api.completeDrill)
	ag.GET("/admin/students", api.querySchoolStudents, adminMiddleware())
}

// Bindings

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required,drillrole"`
	}

	LoginResponse struct {
		Token    string `json:"token"`
		Role     string `json:"role"`
		SchoolID string `json:"schoolId"`
		Message  string `json:"message"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	MeResponse struct {
		ID                string   `json:"id"`
		Name              string   `json:"name"`
		Email             string   `json:"email"`
		Role              string   `json:"role"`
		SchoolID          string   `json:"schoolId"`
		PreparednessScore int      `json:"preparednessScore"`
		DrillsCompleted   int      `json:"drillsCompleted"`
		CompletedDrills   []string `json:"completedDrills"`
	}

	DashboardResponse struct {
		Name              string `json:"name"`
		Email             string `json:"email"`
		PreparednessScore int    `json:"preparednessScore"`
		DrillsCompleted   int    `json:"drillsCompleted"`
	}

	// UpdateStandingRequest overrides the derived standing fields directly;
	// nil fields are left untouched.
	UpdateStandingRequest struct {
		PreparednessScore *int `json:"preparednessScore"`
		DrillsCompleted   *int `json:"drillsCompleted"`
	}

	CompleteDrillRequest struct {
		DrillName string   `json:"drillName" validate:"required"`
		Score     *float64 `json:"score" validate:"required"`
	}

	CompleteDrillResponse struct {
		Message           string   `json:"message"`
		DrillsCompleted   int      `json:"drillsCompleted"`
		PreparednessScore int      `json:"preparednessScore"`
		CompletedDrills   []string `json:"completedDrills"`
	}
)

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering account")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "Registration successful"})
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	data.Email = core.CleanString(data.Email, true /* lower */)
	data.Role = core.CleanString(data.Role, true /* lower */)
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	acct, err := authenticate(ctx, data.Email, data.Password, data.Role, api.svc)
	if err != nil {
		return err
	}
	token, err := api.auth.GenerateToken(api.auth.GetAccountClaims(acct))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		Role:     acct.Role,
		SchoolID: acct.SchoolID,
		Message:  "Login successful",
	})
}

func (api *accountApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	acct, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, MeResponse{
		ID:                acct.ID,
		Name:              acct.Name,
		Email:             acct.Email,
		Role:              acct.Role,
		SchoolID:          acct.SchoolID,
		PreparednessScore: acct.PreparednessScore,
		DrillsCompleted:   acct.DrillsCompleted,
		CompletedDrills:   acct.CompletedDrills(),
	})
}

func (api *accountApi) studentDashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	acct, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return errors.Wrap(err, "getting account")
	}
	if !acct.IsStudent() {
		return echo.NewHTTPError(http.StatusNotFound, "student not found")
	}
	return ctx.JSON(http.StatusOK, DashboardResponse{
		Name:              acct.Name,
		Email:             acct.Email,
		PreparednessScore: acct.PreparednessScore,
		DrillsCompleted:   acct.DrillsCompleted,
	})
}

func (api *accountApi) querySchoolStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if claims.SchoolID == "" {
		return core.NewValidationError(errors.New("admin has no schoolId"))
	}

	students, err := api.svc.QuerySchoolStudents(ctx.Request().Context(), claims.SchoolID)
	if err != nil {
		return errors.Wrap(err, "querying school students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *accountApi) updateStanding(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data UpdateStandingRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStandingRequest")
	}

	acct, err := api.svc.OverrideStanding(ctx.Request().Context(), claims.Subject, data.PreparednessScore, data.DrillsCompleted)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) completeDrill(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data CompleteDrillRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CompleteDrillRequest")
	}
	data.DrillName = core.CleanString(data.DrillName)
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	acct, err := api.svc.RecordDrill(ctx.Request().Context(), claims.Subject, data.DrillName, *data.Score)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, CompleteDrillResponse{
		Message:           "Drill completion recorded successfully",
		DrillsCompleted:   acct.DrillsCompleted,
		PreparednessScore: acct.PreparednessScore,
		CompletedDrills:   acct.CompletedDrills(),
	})
}
