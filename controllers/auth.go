package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type RegisterBusinessInput struct {
	BusinessName  string              `json:"businessName" binding:"required"`
	Address       string              `json:"address"`
	Name          string              `json:"name" binding:"required"`
	Email         string              `json:"email" binding:"required,email"`
	Phone         string              `json:"phone" binding:"required"`
	Password      string              `json:"password" binding:"required,min=8"`
	BusinessHours models.WorkingHours `json:"businessHours"`
}

type SignupInput struct {
	TenantID string `json:"tenantId" binding:"required,uuid"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // email or phone
	Password   string `json:"password" binding:"required"`
}

type OIDCLoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

// IDTokenVerifier is satisfied by *oidc.IDTokenVerifier.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

type AuthController struct {
	cfg      config.AuthConfig
	verifier IDTokenVerifier
}

func NewAuthController(cfg config.AuthConfig, verifier IDTokenVerifier) *AuthController {
	return &AuthController{cfg: cfg, verifier: verifier}
}

// NewOIDCVerifier discovers the issuer and returns a verifier for the
// configured client id. It returns nil when OIDC is not configured.
func NewOIDCVerifier(ctx context.Context, cfg config.AuthConfig) (IDTokenVerifier, error) {
	if !cfg.OIDCEnabled() {
		return nil, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}), nil
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"tenantId":  u.TenantID,
		"email":     u.Email,
		"phone":     u.Phone,
		"name":      u.Name,
		"role":      u.Role,
		"lastLogin": u.LastLogin,
	}
}

func (a *AuthController) issueSession(c *gin.Context, user *models.User) (string, bool) {
	token, err := utils.GenerateToken(a.cfg.JWTSecret, user.ID, user.TenantID, user.Role, a.cfg.TokenTTL())
	if err != nil {
		utils.RespondInternal(c, "Failed to generate token", err)
		return "", false
	}
	c.SetCookie(a.cfg.CookieName, token, int(a.cfg.TokenTTL().Seconds()), "/", "", a.cfg.CookieSecure, true)
	return token, true
}

func emailTaken(email string) (bool, error) {
	var count int64
	err := config.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// RegisterBusiness creates a tenant with its settings and first admin.
func (a *AuthController) RegisterBusiness(c *gin.Context) {
	var input RegisterBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondValidation(c, utils.FieldError{Field: "phone", Message: "invalid phone number"})
		return
	}

	taken, err := emailTaken(input.Email)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if taken {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Email already registered", nil)
		return
	}

	tenant := models.Tenant{
		Name:     input.BusinessName,
		Slug:     services.Slugify(input.BusinessName),
		Email:    input.Email,
		Phone:    utils.NormalizePhone(input.Phone),
		Address:  input.Address,
		IsActive: true,
	}
	admin := models.User{
		Email:    input.Email,
		Phone:    utils.NormalizePhone(input.Phone),
		Name:     input.Name,
		Password: input.Password, // hashed in BeforeCreate
		Role:     utils.RoleAdmin,
		IsActive: true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(tenant.ID, tenant.Name)
		settings.Email, settings.Phone, settings.Address = tenant.Email, tenant.Phone, tenant.Address
		if len(input.BusinessHours) > 0 {
			settings.BusinessHours = input.BusinessHours
		}
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}
		admin.TenantID = tenant.ID
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		return createDefaultReminderTemplates(tx, tenant.ID, tenant.Name)
	})
	if err != nil {
		utils.RespondInternal(c, "Failed to register business", err)
		return
	}

	token, ok := a.issueSession(c, &admin)
	if !ok {
		return
	}
	utils.LoggerFor(c).WithFields(logrus.Fields{"tenant_id": tenant.ID, "slug": tenant.Slug}).Info("business registered")
	respondCreated(c, "Registration successful", gin.H{
		"token":  token,
		"user":   userView(&admin),
		"tenant": tenant,
	})
}

// Signup registers a customer account for an existing business. A customer
// record already on file with the same phone is linked instead of duplicated.
func (a *AuthController) Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	phone := utils.NormalizePhone(input.Phone)
	if !utils.ValidatePhone(phone) {
		utils.RespondValidation(c, utils.FieldError{Field: "phone", Message: "invalid phone number"})
		return
	}
	tenantID := uuid.MustParse(input.TenantID)

	var tenant models.Tenant
	if err := config.DB.Where("id = ? AND is_active = ?", tenantID, true).First(&tenant).Error; err != nil {
		respondDBError(c, err, "Business")
		return
	}

	taken, err := emailTaken(input.Email)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if taken {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Email already registered", nil)
		return
	}

	user := models.User{
		TenantID: tenantID,
		Email:    input.Email,
		Phone:    phone,
		Name:     input.Name,
		Password: input.Password,
		Role:     utils.RoleCustomer,
		IsActive: true,
	}
	var customer models.Customer
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		err := tx.Where("tenant_id = ? AND phone = ? AND user_id IS NULL", tenantID, phone).First(&customer).Error
		switch {
		case err == nil:
			return tx.Model(&customer).Updates(map[string]any{"user_id": user.ID, "email": user.Email}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			customer = models.Customer{TenantID: tenantID, UserID: &user.ID, Name: user.Name, Phone: phone, Email: user.Email, IsActive: true}
			return tx.Create(&customer).Error
		default:
			return err
		}
	})
	if err != nil {
		utils.RespondInternal(c, "Failed to create account", err)
		return
	}

	token, ok := a.issueSession(c, &user)
	if !ok {
		return
	}
	respondCreated(c, "Signup successful", gin.H{
		"token":      token,
		"user":       userView(&user),
		"customerId": customer.ID,
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	var user models.User
	err := config.DB.Where("email = ? OR phone = ?", strings.ToLower(identifier), utils.NormalizePhone(identifier)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithCode(c, utils.CodeUnauthorized, "Invalid credentials", nil)
		} else {
			utils.RespondInternal(c, "Database error", err)
		}
		return
	}
	if !user.IsActive || !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithCode(c, utils.CodeUnauthorized, "Invalid credentials", nil)
		return
	}

	now := time.Now().UTC()
	if err := config.DB.Model(&user).Update("last_login", &now).Error; err != nil {
		utils.LoggerFor(c).WithError(err).Warn("failed to record last login")
	}
	user.LastLogin = &now

	token, ok := a.issueSession(c, &user)
	if !ok {
		return
	}
	respondOK(c, "Login successful", gin.H{"token": token, "user": userView(&user)})
}

func (a *AuthController) Logout(c *gin.Context) {
	c.SetCookie(a.cfg.CookieName, "", -1, "/", "", a.cfg.CookieSecure, true)
	respondOK(c, "Logged out", nil)
}

func (a *AuthController) Me(c *gin.Context) {
	session := utils.MustSession(c)

	var user models.User
	if err := config.DB.Where("id = ? AND tenant_id = ?", session.UserID, session.TenantID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithCode(c, utils.CodeUnauthorized, "User not found", nil)
			return
		}
		utils.RespondInternal(c, "Database error", err)
		return
	}

	var tenant models.Tenant
	if err := config.DB.First(&tenant, "id = ?", user.TenantID).Error; err != nil {
		respondDBError(c, err, "Business")
		return
	}
	respondOK(c, "Current user", gin.H{"user": userView(&user), "tenant": tenant})
}

// OIDCLogin exchanges a verified ID token for a session. Only existing,
// active staff accounts can sign in this way.
func (a *AuthController) OIDCLogin(c *gin.Context) {
	if a.verifier == nil {
		utils.RespondWithCode(c, utils.CodeNotFound, "Single sign-on is not configured", nil)
		return
	}
	var input OIDCLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	idToken, err := a.verifier.Verify(c.Request.Context(), input.IDToken)
	if err != nil {
		utils.LoggerFor(c).WithError(err).Info("oidc token rejected")
		utils.RespondWithCode(c, utils.CodeUnauthorized, "Invalid identity token", nil)
		return
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Email == "" {
		utils.RespondWithCode(c, utils.CodeUnauthorized, "Identity token has no email", nil)
		return
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		utils.RespondWithCode(c, utils.CodeUnauthorized, "Email is not verified", nil)
		return
	}

	var user models.User
	err = config.DB.Where("email = ? AND is_active = ? AND role IN ?", strings.ToLower(claims.Email), true,
		[]string{utils.RoleStylist, utils.RoleManager, utils.RoleAdmin}).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithCode(c, utils.CodeUnauthorized, "No staff account for this identity", nil)
		} else {
			utils.RespondInternal(c, "Database error", err)
		}
		return
	}

	now := time.Now().UTC()
	config.DB.Model(&user).Update("last_login", &now)
	token, ok := a.issueSession(c, &user)
	if !ok {
		return
	}
	respondOK(c, "Login successful", gin.H{"token": token, "user": userView(&user)})
}

func createDefaultReminderTemplates(tx *gorm.DB, tenantID uuid.UUID, business string) error {
	defaults := []models.ReminderTemplate{
		{
			TenantID: tenantID,
			Type:     models.ReminderBirthday,
			Message:  "Hi [CustomerName], " + business + " wishes you a very happy birthday! Enjoy 20% off your next visit this month.",
			IsActive: true,
		},
		{
			TenantID: tenantID,
			Type:     models.ReminderAnniversary,
			Message:  "Hi [CustomerName], happy anniversary from " + business + "! Thank you for being a valued customer.",
			IsActive: true,
		},
		{
			TenantID: tenantID,
			Type:     models.ReminderAppointment,
			Message:  "Hi [CustomerName], this is a reminder of your [ServiceName] appointment on [Time].",
			IsActive: true,
		},
	}
	for i := range defaults {
		if err := tx.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
