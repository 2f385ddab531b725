package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/config"
	"github.com/acornsoft/pocha-backend/database"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/router"
	"github.com/acornsoft/pocha-backend/services"
	"github.com/acornsoft/pocha-backend/utils"
)

func main() {
	utils.InitLogger()

	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedRestaurant(db)

	// background collaborators
	fetcher := services.NewFastlookupClient(cfg.BankLookupURL, cfg.BankAccountNo,
		cfg.BankAccountBirthday, cfg.BankAccountPassword)
	reconciler := services.NewPaymentReconciler(db, fetcher)

	sender := services.NewAlimtalkClient(cfg.KakaoServiceID, cfg.KakaoAccessKey,
		cfg.KakaoSecretKey, cfg.KakaoPlusFriend)
	notifier := services.NewWaitingNotifier(sender)

	orders := services.NewOrderService(db)
	waitlist := services.NewWaitlistService(db, notifier)
	kitchen := services.NewKitchenQueue(db, orders)

	scheduler := services.NewScheduler(reconciler, waitlist, cfg.BankSyncInterval)
	scheduler.Start()
	defer scheduler.Stop()

	r := router.SetupRouter(db, orders, waitlist, kitchen)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.Table{},
		&models.Team{},
		&models.Menu{},
		&models.Order{},
		&models.OrderedMenu{},
		&models.Payment{},
		&models.Waiting{},
		&database.OrderCounter{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedRestaurant creates the single restaurant row on first boot.
func seedRestaurant(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to count restaurants: %v", err)
	}
	if count > 0 {
		return
	}

	restaurant := models.Restaurant{
		Name:          os.Getenv("RESTAURANT_NAME"),
		OpenTime:      "17:00",
		CloseTime:     "02:00",
		BankName:      "KB국민은행",
		BankAccountNo: os.Getenv("BANK_ACCOUNT_NO"),
	}
	if restaurant.Name == "" {
		restaurant.Name = "우리식당"
	}
	if err := db.Create(&restaurant).Error; err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed restaurant: %v", err)
	}
	utils.InfoLogger.Printf("Seeded restaurant %q", restaurant.Name)
}
