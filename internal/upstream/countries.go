package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/config"
	"github.com/travel-snapshot/travel-api/internal/models"
)

const unknownRegion = "Unknown"

// CountryLookup resolves an exact country name to its metadata.
type CountryLookup interface {
	Lookup(ctx context.Context, name string) (*models.CountryInfo, error)
}

type restCountry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital []string `json:"capital"`
	Flags   struct {
		SVG string `json:"svg"`
		PNG string `json:"png"`
	} `json:"flags"`
	Currencies currencyCodes     `json:"currencies"`
	Languages  map[string]string `json:"languages"`
	LatLng     []float64         `json:"latlng"`
	Region     string            `json:"region"`
	Population int64             `json:"population"`
}

// CountryClient queries REST Countries with exact (fullText) matching.
type CountryClient struct {
	caller
}

func NewCountryClient(cfg *config.CountriesConfig, upstreamCfg *config.UpstreamConfig, logger *logrus.Logger) *CountryClient {
	return &CountryClient{caller: newCaller("restcountries", cfg.BaseURL, upstreamCfg, logger)}
}

// Lookup returns ErrNotFound when no country has exactly that name and
// ErrUnavailable when the API cannot be reached.
func (c *CountryClient) Lookup(ctx context.Context, name string) (*models.CountryInfo, error) {
	var out []restCountry
	err := c.get(ctx, "/v3.1/name/"+url.PathEscape(name), func(r *resty.Request) {
		r.SetQueryParam("fullText", "true")
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c.name)
	}

	return reshapeCountry(&out[0]), nil
}

// currencyCodes holds the keys of the currencies object in document order;
// the first one is the country's primary currency.
type currencyCodes []string

func (cc *currencyCodes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*cc = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("currencies: expected object, got %v", tok)
	}

	codes := make(currencyCodes, 0, 1)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := tok.(string)
		if !ok {
			return fmt.Errorf("currencies: unexpected key %v", tok)
		}
		codes = append(codes, code)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	*cc = codes
	return nil
}

func reshapeCountry(rc *restCountry) *models.CountryInfo {
	info := &models.CountryInfo{
		Name:       rc.Name.Common,
		Flag:       rc.Flags.SVG,
		Languages:  make([]string, 0, len(rc.Languages)),
		LatLng:     rc.LatLng,
		Region:     rc.Region,
		Population: rc.Population,
	}

	if len(rc.Capital) > 0 {
		info.Capital = rc.Capital[0]
	}
	if info.Flag == "" {
		info.Flag = rc.Flags.PNG
	}
	if info.Region == "" {
		info.Region = unknownRegion
	}
	if info.LatLng == nil {
		info.LatLng = []float64{}
	}

	if len(rc.Currencies) > 0 {
		info.Currency = rc.Currencies[0]
	}

	for _, lang := range rc.Languages {
		info.Languages = append(info.Languages, lang)
	}
	sort.Strings(info.Languages)

	return info
}
