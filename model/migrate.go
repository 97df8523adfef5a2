package model

import "gorm.io/gorm"

// allModels lists every model to be auto-migrated.
var allModels = []interface{}{
	&Guild{},
	&GuildMember{},
	&GuildApplication{},
	&GuildInvite{},
	&GuildRelation{},
	&GuildEconomy{},
	&GuildContribution{},
	&GuildLog{},
}

// AutoMigrate creates or updates all tables in the given database.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}
