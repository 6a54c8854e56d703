package models

import "gorm.io/gorm"

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&User{},
		&Settings{},
		&Customer{},
		&LoyaltyTransaction{},
		&Service{},
		&Stylist{},
		&Resource{},
		&ResourceLog{},
		&Appointment{},
		&AppointmentStatusChange{},
		&Product{},
		&StockMovement{},
		&Order{},
		&OrderItem{},
		&ClockEntry{},
		&PayrollRecord{},
		&EditorTemplate{},
		&Media{},
		&ReminderTemplate{},
		&ReminderLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
