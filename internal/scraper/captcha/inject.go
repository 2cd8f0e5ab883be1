package captcha

import (
	"fmt"

	"github.com/go-rod/rod"
)

// InjectVendorToken writes a solved vendor-captcha token into the page's
// response inputs, fires the widget callback when one is declared and
// submits the owning form. Token strings come from the solving service and
// are treated as opaque.
func InjectVendorToken(page *rod.Page, vendor, token string) error {
	var js string

	switch vendor {
	case VendorTurnstile:
		js = fmt.Sprintf(`() => {
			const token = %q;
			for (const input of document.querySelectorAll('input[name*="turnstile"], input[name="cf-turnstile-response"]')) {
				input.value = token;
			}
			const widget = document.querySelector('[data-sitekey]');
			if (widget) {
				const callback = widget.getAttribute('data-callback');
				if (callback && typeof window[callback] === 'function') {
					window[callback](token);
				}
			}
			for (const form of document.querySelectorAll('form')) {
				if (form.querySelector('[data-sitekey]') || form.querySelector('input[name*="turnstile"]')) {
					form.submit();
					break;
				}
			}
		}`, token)
	case VendorRecaptcha:
		js = fmt.Sprintf(`() => {
			const token = %q;
			for (const el of document.querySelectorAll('[name="g-recaptcha-response"]')) {
				el.value = token;
				el.innerHTML = token;
			}
			const widget = document.querySelector('.g-recaptcha');
			if (widget) {
				const callback = widget.getAttribute('data-callback');
				if (callback && typeof window[callback] === 'function') {
					window[callback](token);
				}
			}
			for (const form of document.querySelectorAll('form')) {
				if (form.querySelector('.g-recaptcha') || form.querySelector('[name="g-recaptcha-response"]')) {
					form.submit();
					break;
				}
			}
		}`, token)
	default:
		return fmt.Errorf("unsupported captcha vendor: %s", vendor)
	}

	return rod.Try(func() {
		page.MustEval(js)
	})
}
