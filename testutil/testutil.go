// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/utils"
)

const (
	Password  = "password123"
	JWTSecret = "test-secret"
)

// NewDB opens a private in-memory sqlite database, migrates it and installs
// it as config.DB for the duration of the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	utils.Log.SetLevel(logrus.ErrorLevel)

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:memdb_%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig(time.Second))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prev := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = prev
		sqlDB.Close()
	})
	return db
}

// Fixture is one business with a user of every role.
type Fixture struct {
	Tenant   models.Tenant
	Settings models.Settings

	Admin        models.User
	Manager      models.User
	StylistUser  models.User
	CustomerUser models.User

	Stylist  models.Stylist
	Customer models.Customer
	Service  models.Service
}

// Seed creates a Fixture. Business hours are the defaults in UTC.
func Seed(t *testing.T, db *gorm.DB, name string) *Fixture {
	t.Helper()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	f := &Fixture{}

	f.Tenant = models.Tenant{Name: name, Slug: slug, Email: slug + "@example.com", IsActive: true}
	must(t, db.Create(&f.Tenant).Error)

	f.Settings = models.DefaultSettings(f.Tenant.ID, name)
	must(t, db.Create(&f.Settings).Error)

	f.Admin = NewUser(t, db, f.Tenant.ID, utils.RoleAdmin, "admin@"+slug+".test")
	f.Manager = NewUser(t, db, f.Tenant.ID, utils.RoleManager, "manager@"+slug+".test")
	f.StylistUser = NewUser(t, db, f.Tenant.ID, utils.RoleStylist, "stylist@"+slug+".test")
	f.CustomerUser = NewUser(t, db, f.Tenant.ID, utils.RoleCustomer, "customer@"+slug+".test")

	f.Stylist = models.Stylist{
		TenantID:        f.Tenant.ID,
		UserID:          f.StylistUser.ID,
		Specializations: models.StringList{"fades", "beards"},
		HourlyRateCents: 2000,
		CommissionRate:  decimal.RequireFromString("0.10"),
		IsActive:        true,
	}
	must(t, db.Create(&f.Stylist).Error)
	f.Stylist.User = &f.StylistUser

	f.Customer = models.Customer{
		TenantID:    f.Tenant.ID,
		UserID:      &f.CustomerUser.ID,
		Name:        "Carl Customer",
		Phone:       "+15550001111",
		Email:       f.CustomerUser.Email,
		LoyaltyTier: "Bronze",
		IsActive:    true,
	}
	must(t, db.Create(&f.Customer).Error)

	f.Service = models.Service{TenantID: f.Tenant.ID, Name: "Classic Cut", PriceCents: 3500, Duration: 30, Category: "Hair", IsActive: true}
	must(t, db.Create(&f.Service).Error)
	return f
}

func NewUser(t *testing.T, db *gorm.DB, tenantID uuid.UUID, role, email string) models.User {
	t.Helper()
	u := models.User{
		TenantID: tenantID,
		Email:    email,
		Password: Password,
		Name:     role + " user",
		Role:     role,
		IsActive: true,
	}
	must(t, db.Create(&u).Error)
	return u
}

func NewProduct(t *testing.T, db *gorm.DB, tenantID uuid.UUID, sku string, priceCents int64, stock int) models.Product {
	t.Helper()
	p := models.Product{TenantID: tenantID, SKU: sku, Name: "Product " + sku, PriceCents: priceCents, CurrentStock: stock, MinStock: 2, IsActive: true}
	must(t, db.Create(&p).Error)
	return p
}

// Session is what AuthMiddleware would put on the request for u.
func Session(u models.User) utils.Session {
	return utils.Session{UserID: u.ID, TenantID: u.TenantID, Role: u.Role}
}

func Token(t *testing.T, u models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(JWTSecret, u.ID, u.TenantID, u.Role, time.Hour)
	must(t, err)
	return token
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Monday is 2030-01-07 00:00 UTC.
var Monday = time.Date(2030, time.January, 7, 0, 0, 0, 0, time.UTC)

// At returns Monday plus the given day offset at hh:mm UTC.
func At(days, hh, mm int) time.Time {
	return Monday.AddDate(0, 0, days).Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

// Message is one captured notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// FakeNotifier records outbound email and SMS instead of sending them.
type FakeNotifier struct {
	mu        sync.Mutex
	Emails    []Message
	SMS       []Message
	FailEmail error
	FailSMS   error
}

func (n *FakeNotifier) SendEmail(_ context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailEmail != nil {
		return n.FailEmail
	}
	n.Emails = append(n.Emails, Message{To: to, Subject: subject, Body: body})
	return nil
}

func (n *FakeNotifier) SendSMS(_ context.Context, to, body string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailSMS != nil {
		return "", n.FailSMS
	}
	n.SMS = append(n.SMS, Message{To: to, Body: body})
	return "SM" + uuid.NewString()[:8], nil
}

// EmailsTo returns the captured emails for one recipient.
func (n *FakeNotifier) EmailsTo(to string) []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Message
	for _, m := range n.Emails {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

// Events records hub publications.
type Events struct {
	mu     sync.Mutex
	Names  []string
	Tenant []uuid.UUID
}

func (e *Events) Publish(tenantID uuid.UUID, event string, _ any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Names = append(e.Names, event)
	e.Tenant = append(e.Tenant, tenantID)
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
