package server

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	// Storefront
	s.RegisterRouteHandler("GET "+RouteHome, ChainMiddleware(s.HomeHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProperties, ChainMiddleware(s.PropertiesHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProperty, ChainMiddleware(s.PropertyHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFurnitureList, ChainMiddleware(s.FurnitureListHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFurniture, ChainMiddleware(s.FurnitureHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteBook, ChainMiddleware(s.BookGetHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteBook, ChainMiddleware(s.BookPostHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteContact, ChainMiddleware(s.ContactGetHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteContact, ChainMiddleware(s.ContactPostHandler(), s.PageMiddleware()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// Checkout
	s.RegisterRouteHandler("GET "+RouteCheckout, ChainMiddleware(s.CheckoutHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCheckoutComplete, ChainMiddleware(s.CheckoutCompleteHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIVerifyPayment, ChainMiddleware(s.VerifyPaymentHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPIVerifyPayment, ChainMiddleware(s.VerifyPaymentHandler(), s.APIMiddleware()...))

	// Admin routes (require a signed-in staff session)
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminProperties, ChainMiddleware(s.AdminPropertiesHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminProperties, ChainMiddleware(s.AdminPropertySaveHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminPropertyNew, ChainMiddleware(s.AdminPropertyNewHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminPropertyEdit, ChainMiddleware(s.AdminPropertyEditHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminProperty, ChainMiddleware(s.AdminPropertySaveHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminPropertyDelete, ChainMiddleware(s.AdminPropertyDeleteHandler(), s.AdminMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteAdminFurniture, ChainMiddleware(s.AdminFurnitureListHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminFurniture, ChainMiddleware(s.AdminFurnitureSaveHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminFurnitureNew, ChainMiddleware(s.AdminFurnitureNewHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminFurnitureEdit, ChainMiddleware(s.AdminFurnitureEditHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminFurnitureItem, ChainMiddleware(s.AdminFurnitureSaveHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminFurnitureDelete, ChainMiddleware(s.AdminFurnitureDeleteHandler(), s.AdminMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteAdminRentals, ChainMiddleware(s.AdminRentalsHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminRental, ChainMiddleware(s.AdminRentalHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminRentalStatus, ChainMiddleware(s.AdminRentalStatusHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminRentalGenerate, ChainMiddleware(s.AdminRentalGenerateHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminPaymentMark, ChainMiddleware(s.AdminPaymentMarkHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminPaymentRemind, ChainMiddleware(s.AdminPaymentRemindHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAdminDues, ChainMiddleware(s.AdminDuesHandler(), s.AdminMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteAdminInquiries, ChainMiddleware(s.AdminInquiriesHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminInquiryStatus, ChainMiddleware(s.AdminInquiryStatusHandler(), s.AdminMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAdminBookingStatus, ChainMiddleware(s.AdminBookingStatusHandler(), s.AdminMiddleware()...))

	// Operations
	s.RegisterRouteHandler("GET "+RouteMetrics, ChainMiddleware(s.MetricsHandler(), s.RecoverMiddleware))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.StaticFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.StaticFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticImages, ChainMiddleware(s.StaticFileHandler(), s.StaticMiddleware()...))
}

func logError(method, path, error string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	errorString := Red + error + ResetColor
	log.Warn().Msgf("[%-19s] %s %s", displayMethod, path, errorString)
}
