package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/controllers"
	"github.com/acornsoft/pocha-backend/middlewares"
	"github.com/acornsoft/pocha-backend/services"
)

// SetupRouter wires every endpoint. Guest-facing routes (menus, ordering,
// waitlist) are public; everything under /admin requires a JWT.
func SetupRouter(db *gorm.DB, orders *services.OrderService, waitlist *services.WaitlistService, kitchen *services.KitchenQueue) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	menuCtrl := controllers.NewMenuController(db)
	tableCtrl := controllers.NewTableController(db, orders)
	orderCtrl := controllers.NewOrderController(db, orders)
	waitingCtrl := controllers.NewWaitingController(db, waitlist)
	kitchenCtrl := controllers.NewKitchenController(db, kitchen, orders)
	paymentCtrl := controllers.NewPaymentController(db)
	kdsCtrl := controllers.NewKDSController()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// login is brute-forceable; throttle it hard
	login := r.Group("/")
	login.Use(middlewares.NewStrictRateLimiter())
	{
		login.POST("/login", userCtrl.Login)
	}

	// -- GUEST (no auth) --
	r.GET("/restaurant", restaurantCtrl.GetRestaurant)
	r.GET("/menus", menuCtrl.GetAllMenus)
	r.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	r.POST("/tables/:table_id/kiosk-orders", orderCtrl.CreateKioskOrder)
	r.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	r.POST("/waitings", waitingCtrl.CreateWaiting)
	r.GET("/waitings/me", waitingCtrl.FindWaiting)
	r.POST("/waitings/cancel", waitingCtrl.CancelWaiting)

	// -- ADMIN (JWT) --
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/register", userCtrl.Register)
	auth.PATCH("/restaurant", restaurantCtrl.UpdateRestaurant)

	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)

	auth.GET("/tables", tableCtrl.GetAllTables)
	auth.POST("/tables", tableCtrl.CreateTable)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	auth.POST("/tables/:table_id/close", tableCtrl.CloseTable)
	auth.GET("/tables/stats", tableCtrl.GetTableStats)

	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.POST("/orders/:order_id/reject", orderCtrl.RejectOrder)
	auth.POST("/order-items/:item_id/reject", orderCtrl.RejectOrderItem)

	auth.GET("/waitings", waitingCtrl.GetAllWaitings)
	// static sibling of :waiting_id would conflict in the route tree
	auth.POST("/waitlist/dequeue", waitingCtrl.DequeueWaitings)
	auth.POST("/waitings/:waiting_id/reject", waitingCtrl.RejectWaiting)
	auth.POST("/waitings/:waiting_id/enter", waitingCtrl.EnterWaiting)

	auth.GET("/kitchen/queue", kitchenCtrl.GetCookingQueue)
	auth.POST("/kitchen/menus/:menu_id/cook-one", kitchenCtrl.CookOneOfMenu)
	auth.GET("/kitchen/serving", kitchenCtrl.GetServingList)
	auth.POST("/order-items/:item_id/cook", kitchenCtrl.CookItem)
	auth.POST("/order-items/:item_id/serve", kitchenCtrl.ServeItem)

	auth.GET("/payments", paymentCtrl.GetAllPayments)
	auth.POST("/payments/:payment_id/refund", paymentCtrl.RefundPayment)
	auth.GET("/payments/stats", paymentCtrl.GetSalesStats)

	auth.GET("/kds/ws", kdsCtrl.HandleWebSocket)

	return r
}
