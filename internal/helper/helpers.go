package helper

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/cogestio/espaceclient/internal/errHandler"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler *errHandler.ErrorHandler
}

type HelperInterface interface {
	NewEmailData() map[string]any
	BackgroundTask(r *http.Request, fn func() error)
	DisplayName(firstName, lastName string) string
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler *errHandler.ErrorHandler) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
	}
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

// DisplayName title-cases the name parts the way they appear on dashboards
// and in email salutations.
func (h *HelperRepository) DisplayName(firstName, lastName string) string {
	title := cases.Title(language.French)
	return title.String(firstName) + " " + title.String(lastName)
}

func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}
