package middlewares

import "github.com/gin-gonic/gin"

const unmatchedRoute = "unmatched"

// routeLabel is the registered route pattern, or a fixed label for paths
// no route matched.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
