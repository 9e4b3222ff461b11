package handler

import (
    "net/http"
    "strconv"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/movie-tracker/internal/utils"
)

// FormNonceCookie holds the per-client value every form token is bound to.
const FormNonceCookie = "form_nonce"

// requestNonce returns the nonce the client sent, or "" when it sent none.
func requestNonce(c echo.Context) string {
    ck, err := c.Cookie(FormNonceCookie)
    if err != nil {
        return ""
    }
    return ck.Value
}

// issueNonce returns the client's nonce, setting a fresh cookie first when
// the request carried none.
func issueNonce(c echo.Context) string {
    if v := requestNonce(c); v != "" {
        return v
    }
    v := uuid.NewString()
    c.SetCookie(&http.Cookie{
        Name:     FormNonceCookie,
        Value:    v,
        Path:     "/",
        HttpOnly: true,
        Secure:   c.IsTLS(),
        SameSite: http.SameSiteLaxMode,
    })
    return v
}

func addBinding(nonce string) utils.FormBinding {
    return utils.FormBinding{Form: formAdd, Nonce: nonce}
}

func editBinding(nonce string, id uint64) utils.FormBinding {
    return utils.FormBinding{Form: formEdit, Nonce: nonce, Subject: strconv.FormatUint(id, 10)}
}
