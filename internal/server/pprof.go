package server

import (
	"log"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
)

// StartPprofServer serves the pprof endpoints on their own listener so the
// profiling surface never shares a port with the API. Keep the address bound
// to an internal interface.
func StartPprofServer(addr string) {
	router := gin.New()
	pprof.Register(router)

	go func() {
		log.Printf("pprof listening on %s", addr)
		if err := router.Run(addr); err != nil {
			log.Fatalf("pprof server stopped: %v", err)
		}
	}()
}
