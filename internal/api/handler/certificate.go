package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"survey/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const contentTypePDF = "application/pdf"

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

type groupCertificate struct {
	container *do.Injector
}

func (gr *groupCertificate) Download(c echo.Context) error {
	serviceCertificate, err := do.Invoke[*services.ServiceCertificate](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("id must be an integer"), errorx.Invalid))
	}

	certificate, r, err := serviceCertificate.OpenCertificate(c.Request().Context(), id)
	if err != nil {
		return httpx.RestAbort(c, nil, classify(c, err))
	}
	defer r.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, contentDisposition(certificate.Filename))
	return c.Stream(http.StatusOK, contentTypePDF, r)
}

// contentDisposition keeps a plain quoted filename for ASCII names. Other
// names get an ASCII fallback plus the RFC 5987 filename* parameter.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, name)

	value := fmt.Sprintf(`attachment; filename="%s"`, quoteEscaper.Replace(fallback))
	if fallback == name {
		return value
	}
	return value + "; filename*=UTF-8''" + encodeExtValue(name)
}

func encodeExtValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
