package hero

import (
	"context"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jinzhu/inflection"
	"github.com/uptrace/bun"
	"golang.org/x/text/cases"
)

func init() {
	// inflection pluralizes "hero" as "heros".
	inflection.AddIrregular("hero", "heroes")
}

// MaxFieldLength bounds every text column of the heroes table.
const MaxFieldLength = 50

// Hero is a catalog entry. ID is assigned by the store on insert and never
// changes afterwards. Name is the business key.
type Hero struct {
	bun.BaseModel `bun:"table:heroes,alias:h"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	Name      string  `bun:"name,notnull,unique" json:"name"`
	// NameKey is the case folded Name. Its unique index makes names that
	// differ only in case collide in the store.
	NameKey   string  `bun:"name_key,notnull,unique" json:"-"`
	FirstName string  `bun:"first_name,notnull" json:"firstName"`
	LastName  string  `bun:"last_name,notnull" json:"lastName"`
	Place     string  `bun:"place,notnull" json:"place"`
	ImageURL  *string `bun:"image_url" json:"imageUrl,omitempty"`

	// Image holds the attachment bytes when a hero is returned with details.
	Image []byte `bun:"-" json:"image,omitempty"`
}

// Validate checks the fields required by the store.
func (h *Hero) Validate() error {
	return validation.ValidateStruct(h,
		validation.Field(&h.Name,
			validation.Required,
			validation.Length(1, MaxFieldLength),
			validation.Match(plainName).Error("must not contain path separators"),
			validation.NotIn(".", "..").Error("must not be a dot segment"),
		),
		validation.Field(&h.FirstName, validation.Required, validation.Length(1, MaxFieldLength)),
		validation.Field(&h.LastName, validation.Required, validation.Length(1, MaxFieldLength)),
		validation.Field(&h.Place, validation.Required, validation.Length(1, MaxFieldLength)),
	)
}

var plainName = regexp.MustCompile(`^[^/\\]*$`)

var _ bun.BeforeAppendModelHook = (*Hero)(nil)

// BeforeAppendModel keeps NameKey in sync with Name on every insert and update.
func (h *Hero) BeforeAppendModel(_ context.Context, _ bun.Query) error {
	h.NameKey = FoldName(h.Name)
	return nil
}

// FoldName returns the key two names share when they are equal ignoring
// case, using full Unicode case folding.
func FoldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Normalize trims surrounding whitespace from the text fields.
func (h *Hero) Normalize() {
	h.Name = strings.TrimSpace(h.Name)
	h.FirstName = strings.TrimSpace(h.FirstName)
	h.LastName = strings.TrimSpace(h.LastName)
	h.Place = strings.TrimSpace(h.Place)
}

// CopyDetails overwrites the editable fields of h with the ones in src.
// Identity and attachment are left untouched.
func (h *Hero) CopyDetails(src *Hero) {
	h.Name = src.Name
	h.FirstName = src.FirstName
	h.LastName = src.LastName
	h.Place = src.Place
}
