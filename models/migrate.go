package models

// All lists every table owned by the API, in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Region{},
		&Province{},
		&City{},
		&Barangay{},
		&User{},
		&Project{},
		&Supervisor{},
		&Client{},
		&FieldWorker{},
		&Phase{},
		&Subtask{},
		&SubtaskFieldWorker{},
		&Attendance{},
		&InvitationDelivery{},
	}
}
