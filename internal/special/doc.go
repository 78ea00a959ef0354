// Package special evaluates the special functions and numerical helpers used
// alongside the integrators: stable quadratic roots, the real branches of
// Lambert W, the Riemann zeta function for s > 1 and numerical derivatives.
package special
