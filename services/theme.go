package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// Fallbacks used for every theme field that is unset or invalid.
const (
	DefaultColorPrimary    = "#2563eb"
	DefaultColorSecondary  = "#0f172a"
	DefaultColorAccent     = "#f59e0b"
	DefaultColorBackground = "#ffffff"
	DefaultColorSurface    = "#f8fafc"
	DefaultColorText       = "#111827"
	DefaultColorMuted      = "#6b7280"
	DefaultFontHeading     = "system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif"
	DefaultFontBody        = "system-ui, -apple-system, 'Segoe UI', Roboto, sans-serif"
	DefaultFontSizeBase    = "16px"
	DefaultRadius          = "0.5rem"
)

// ThemeProperties lists every custom property the stylesheet declares, in output order.
var ThemeProperties = []string{
	"--color-primary",
	"--color-primary-contrast",
	"--color-secondary",
	"--color-accent",
	"--color-background",
	"--color-surface",
	"--color-text",
	"--color-muted",
	"--font-heading",
	"--font-body",
	"--font-size-base",
	"--radius",
}

var (
	hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	cssSizeRe  = regexp.MustCompile(`^(?:0|\d+(?:\.\d+)?(?:px|rem|em|%))$`)
	// font-family lists: names, commas, spaces and quotes, nothing that can
	// open a comment, a function or a new declaration.
	fontFamilyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ,._'"-]*$`)
)

// ResolveTheme returns every declared property with its effective value.
func ResolveTheme(cfg *models.ThemeConfig) map[string]string {
	if cfg == nil {
		cfg = &models.ThemeConfig{}
	}
	primary := hexOr(cfg.Colors.Primary, DefaultColorPrimary)
	return map[string]string{
		"--color-primary":          primary,
		"--color-primary-contrast": contrastColor(primary),
		"--color-secondary":        hexOr(cfg.Colors.Secondary, DefaultColorSecondary),
		"--color-accent":           hexOr(cfg.Colors.Accent, DefaultColorAccent),
		"--color-background":       hexOr(cfg.Colors.Background, DefaultColorBackground),
		"--color-surface":          hexOr(cfg.Colors.Surface, DefaultColorSurface),
		"--color-text":             hexOr(cfg.Colors.Text, DefaultColorText),
		"--color-muted":            hexOr(cfg.Colors.Muted, DefaultColorMuted),
		"--font-heading":           fontOr(cfg.Typography.HeadingFont, DefaultFontHeading),
		"--font-body":              fontOr(cfg.Typography.BodyFont, DefaultFontBody),
		"--font-size-base":         sizeOr(cfg.Typography.BaseFontSize, DefaultFontSizeBase),
		"--radius":                 sizeOr(cfg.Radius, DefaultRadius),
	}
}

// GenerateThemeCSS renders the tenant theme as CSS custom properties on :root.
func GenerateThemeCSS(cfg *models.ThemeConfig) string {
	values := ResolveTheme(cfg)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, prop := range ThemeProperties {
		fmt.Fprintf(&b, "  %s: %s;\n", prop, values[prop])
	}
	b.WriteString("}\n")
	return b.String()
}

func hexOr(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if !hexColorRe.MatchString(s) {
		return def
	}
	return strings.ToLower(s)
}

// fontOr accepts a plain font-family list and falls back to def otherwise.
func fontOr(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if !validFontFamily(s) {
		return def
	}
	return s
}

func validFontFamily(s string) bool {
	return len(s) <= 200 &&
		fontFamilyRe.MatchString(s) &&
		strings.Count(s, "'")%2 == 0 &&
		strings.Count(s, `"`)%2 == 0
}

func sizeOr(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if !cssSizeRe.MatchString(s) {
		return def
	}
	return s
}

// contrastColor picks black or white text for the background colour hex,
// using WCAG relative luminance.
func contrastColor(hex string) string {
	if relativeLuminance(hex) > 0.179 {
		return "#000000"
	}
	return "#ffffff"
}

func relativeLuminance(hex string) float64 {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0
	}
	channel := func(s string) float64 {
		v, _ := strconv.ParseUint(s, 16, 8)
		c := float64(v) / 255
		if c <= 0.03928 {
			return c / 12.92
		}
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return 0.2126*channel(h[0:2]) + 0.7152*channel(h[2:4]) + 0.0722*channel(h[4:6])
}

// ThemeService manages stored tenant themes and their published assets.
type ThemeService struct {
	tenants    TenantStore
	storage    ObjectStorage
	assetBase  *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewThemeService fetches remote themes through an HTTP cache kept on disk in
// cacheDir, or in memory when cacheDir is empty. Remote themes are only read
// from the asset host in assetBaseURL; importing is disabled when it is empty.
// storage may be nil.
func NewThemeService(tenants TenantStore, storage ObjectStorage, cacheDir, assetBaseURL string) *ThemeService {
	logger := log.With().Str("service", "theme").Logger()

	var cache httpcache.Cache = httpcache.NewMemoryCache()
	if cacheDir != "" {
		cache = diskcache.New(cacheDir)
	}

	var assetBase *url.URL
	if assetBaseURL != "" {
		u, err := url.Parse(assetBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			logger.Warn().Str("assetBaseUrl", assetBaseURL).Msg("Invalid theme asset base URL, remote import disabled")
		} else {
			assetBase = u
		}
	}

	s := &ThemeService{
		tenants:   tenants,
		storage:   storage,
		assetBase: assetBase,
		logger:    logger,
	}
	s.httpClient = &http.Client{
		Transport: httpcache.NewTransport(cache),
		Timeout:   15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !s.onAssetHost(req.URL) {
				return fmt.Errorf("redirect to %s left the theme asset host", req.URL.Host)
			}
			if len(via) >= 5 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}
	return s
}

// Update merges cfg over the tenant's stored theme.
func (s *ThemeService) Update(ctx context.Context, tenantID uuid.UUID, cfg models.ThemeConfig) (*models.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if err := validateTheme(cfg); err != nil {
		return nil, err
	}
	tenant.Theme = datatypes.NewJSONType(tenant.Theme.Data().Merge(cfg))
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func validateTheme(cfg models.ThemeConfig) error {
	colors := map[string]*string{
		"colors.primary":    cfg.Colors.Primary,
		"colors.secondary":  cfg.Colors.Secondary,
		"colors.accent":     cfg.Colors.Accent,
		"colors.background": cfg.Colors.Background,
		"colors.surface":    cfg.Colors.Surface,
		"colors.text":       cfg.Colors.Text,
		"colors.muted":      cfg.Colors.Muted,
	}
	for field, v := range colors {
		if v != nil && !hexColorRe.MatchString(strings.TrimSpace(*v)) {
			return errs.NewInvalidFieldError(field, "must be a hex colour like #1a2b3c")
		}
	}

	fonts := map[string]*string{
		"typography.headingFont": cfg.Typography.HeadingFont,
		"typography.bodyFont":    cfg.Typography.BodyFont,
	}
	for field, v := range fonts {
		if v != nil && !validFontFamily(strings.TrimSpace(*v)) {
			return errs.NewInvalidFieldError(field, "must be a comma separated list of font names")
		}
	}

	sizes := map[string]*string{
		"typography.baseFontSize": cfg.Typography.BaseFontSize,
		"radius":                  cfg.Radius,
	}
	for field, v := range sizes {
		if v != nil && !cssSizeRe.MatchString(strings.TrimSpace(*v)) {
			return errs.NewInvalidFieldError(field, "must be a length like 16px, 1rem or 50%")
		}
	}
	return nil
}

// PublishedTheme holds the public URLs of a published theme.
type PublishedTheme struct {
	CSSURL  string `json:"cssUrl"`
	JSONURL string `json:"jsonUrl"`
}

// Publish uploads themes/<slug>/theme.css and theme.json.
func (s *ThemeService) Publish(ctx context.Context, tenant *models.Tenant) (*PublishedTheme, error) {
	if s.storage == nil {
		return nil, errs.NewConfigError("S3_BUCKET")
	}
	cfg := tenant.Theme.Data()
	css := GenerateThemeCSS(&cfg)
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal theme: %w", err)
	}

	prefix := "themes/" + tenant.Slug + "/"
	cssURL, err := s.storage.Put(ctx, prefix+"theme.css", strings.NewReader(css), "text/css; charset=utf-8")
	if err != nil {
		return nil, err
	}
	jsonURL, err := s.storage.Put(ctx, prefix+"theme.json", bytes.NewReader(raw), "application/json")
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("tenant", tenant.Slug).Str("cssUrl", cssURL).Msg("Theme published")
	return &PublishedTheme{CSSURL: cssURL, JSONURL: jsonURL}, nil
}

// FetchRemote downloads a theme JSON document from the asset host, merges it
// over the tenant's stored theme and saves the result. ref is either a path on
// the asset host or an absolute URL on it.
func (s *ThemeService) FetchRemote(ctx context.Context, tenantID uuid.UUID, ref string) (*models.Tenant, error) {
	if s.assetBase == nil {
		return nil, errs.NewConfigError("THEME_ASSET_BASE_URL")
	}
	target, err := s.assetBase.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, errs.NewInvalidFieldError("url", "not a valid URL")
	}
	if !s.onAssetHost(target) {
		return nil, errs.NewInvalidFieldError("url", "must point at the theme asset host")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, errs.NewInvalidFieldError("url", "not a valid URL")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", target.String()).Msg("Theme host unreachable")
		return nil, errs.NewServiceUnreachableError("theme host", nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read theme response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().
			Str("url", target.String()).
			Int("status", resp.StatusCode).
			Str("body", string(body)).
			Msg("Theme host returned an error")
		return nil, errs.NewUpstreamStatusError("theme host", resp.StatusCode, "")
	}

	var remote models.ThemeConfig
	if err := json.Unmarshal(body, &remote); err != nil {
		return nil, errs.NewMalformedPayloadError("theme", err)
	}

	s.logger.Debug().
		Str("url", target.String()).
		Bool("cached", resp.Header.Get(httpcache.XFromCache) == "1").
		Msg("Fetched remote theme")
	return s.Update(ctx, tenantID, remote)
}

// onAssetHost reports whether u is on the configured asset host, under its base path.
func (s *ThemeService) onAssetHost(u *url.URL) bool {
	if s.assetBase == nil || u == nil {
		return false
	}
	if u.Scheme != s.assetBase.Scheme || !strings.EqualFold(u.Host, s.assetBase.Host) || u.User != nil {
		return false
	}
	basePath := strings.TrimSuffix(s.assetBase.Path, "/") + "/"
	return strings.HasPrefix(path.Clean("/"+u.Path), basePath) || basePath == "/"
}
