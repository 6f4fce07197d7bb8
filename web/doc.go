// Package web serves the profile pages: viewing a profile and the
// authenticated profile-edit flow. Rendering, sessions and CSRF checks are
// injected; the handlers only decide status codes, templates and context.
package web
