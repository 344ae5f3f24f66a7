package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Article{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ArTxRecord{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&ArticleTopic{}); err != nil {
		return err
	}

	return db.AutoMigrate(&User{})
}
