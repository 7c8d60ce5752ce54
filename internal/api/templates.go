package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"littlelemon-backend/internal/model"
	"littlelemon-backend/internal/mw"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is the common view model of every HTML page.
type pageData struct {
	Title   string
	User    *model.User
	Message string
	// Notice is a success message, Message an error one.
	Notice string
}

// LoadTemplates parses the embedded HTML templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"hour": func(slot any) string { return fmt.Sprintf("%02d:00", slot) },
	}).ParseFS(templateFS, "templates/*.html")
}

func (h *Handler) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, pageData{Title: title, User: mw.CurrentUser(c)})
	}
}

// Home renders the landing page.
func (h *Handler) Home() gin.HandlerFunc { return h.page("index.html", "Little Lemon") }

// About renders the about page.
func (h *Handler) About() gin.HandlerFunc { return h.page("about.html", "About") }

// Menu renders the menu page.
func (h *Handler) Menu() gin.HandlerFunc { return h.page("menu.html", "Menu") }
