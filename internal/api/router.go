package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"littlelemon-backend/config"
	"littlelemon-backend/internal/auth"
	"littlelemon-backend/internal/booking"
	"littlelemon-backend/internal/metrics"
	"littlelemon-backend/internal/mw"
	"littlelemon-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, svc *booking.Service, s store.Store, webpushOptions *webpush.Options) (*gin.Engine, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	metrics.Register()

	r := gin.Default()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(templates)
	r.Use(mw.RequestIDs())

	handler := NewHandler(svc, s, webpushOptions, cfg.Booking.ExposeAllBookings)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst,
		mw.ClientKey(cfg.Server.RequestIPHeader))
	authenticate := mw.Authenticate(auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer), s, cfg.Auth.CookieName)
	requireUser := mw.RequireUser(cfg.Auth.LoginURL)

	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.PageCache(cacheStore, cfg.Server.CacheTTL)

	r.GET("/healthz", handler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	site := r.Group("/")
	site.Use(rateLimiter, authenticate)
	{
		site.GET("/", caching, handler.Home())
		site.GET("/about/", caching, handler.About())
		site.GET("/menu/", caching, handler.Menu())

		site.GET("/check-availability/", handler.CheckAvailability)
		site.GET("/test-availability/", handler.TestAvailability)

		site.GET("/book/", requireUser, handler.BookForm)
		site.POST("/book/", requireUser, handler.Book)
		site.GET("/bookings/", requireUser, handler.Bookings)
		site.GET("/reservations/", requireUser, handler.Bookings)
	}

	api := r.Group("/api")
	api.Use(rateLimiter, authenticate)
	{
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.GET("/subscriptions", requireUser, handler.GetSubscription)
		api.PUT("/subscriptions", requireUser, handler.PutSubscription)
		api.DELETE("/subscriptions", requireUser, handler.DeleteSubscription)
	}

	return r, nil
}
