package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Storefront
	RouteHome          = "/{$}"
	RouteProperties    = "/properties"
	RouteProperty      = "/properties/{id}"
	RouteFurnitureList = "/furniture"
	RouteFurniture     = "/furniture/{id}"
	RouteBook          = "/book"
	RouteContact       = "/contact"

	// Auth Routes - Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// Checkout
	RouteCheckout         = "/checkout/{kind}/{id}"
	RouteCheckoutComplete = "/checkout/complete"
	RouteAPIVerifyPayment = "/api/payments/verify"

	// Admin Routes
	RouteAdminDashboard       = "/admin"
	RouteAdminProperties      = "/admin/properties"
	RouteAdminPropertyNew     = "/admin/properties/new"
	RouteAdminProperty        = "/admin/properties/{id}"
	RouteAdminPropertyEdit    = "/admin/properties/{id}/edit"
	RouteAdminPropertyDelete  = "/admin/properties/{id}/delete"
	RouteAdminFurniture       = "/admin/furniture"
	RouteAdminFurnitureNew    = "/admin/furniture/new"
	RouteAdminFurnitureItem   = "/admin/furniture/{id}"
	RouteAdminFurnitureEdit   = "/admin/furniture/{id}/edit"
	RouteAdminFurnitureDelete = "/admin/furniture/{id}/delete"
	RouteAdminRentals         = "/admin/rentals"
	RouteAdminRental          = "/admin/rentals/{id}"
	RouteAdminRentalStatus    = "/admin/rentals/{id}/status"
	RouteAdminRentalGenerate  = "/admin/rentals/{id}/generate-payments"
	RouteAdminPaymentMark     = "/admin/payments/{id}/mark"
	RouteAdminPaymentRemind   = "/admin/payments/{id}/remind"
	RouteAdminDues            = "/admin/dues"
	RouteAdminInquiries       = "/admin/inquiries"
	RouteAdminInquiryStatus   = "/admin/inquiries/{id}/status"
	RouteAdminBookingStatus   = "/admin/bookings/{id}/status"

	// Operations
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS    = "/css/{file}"
	RouteStaticJS     = "/js/{file}"
	RouteStaticImages = "/images/{file}"
)
