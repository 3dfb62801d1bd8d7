package gateway_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
)

var _ = Describe("New", func() {
	It("builds the simulator in simulated mode", func() {
		gw := gateway.New(internal.GatewayConfig{Mode: internal.GatewayModeSimulated}, testLogger())

		Expect(gw).To(BeAssignableToTypeOf(&gateway.Simulator{}))
	})

	It("builds the live client otherwise", func() {
		gw := gateway.New(internal.GatewayConfig{
			Mode:    internal.GatewayModeLive,
			BaseURL: "https://gw",
		}, testLogger())

		Expect(gw).To(BeAssignableToTypeOf(&gateway.Client{}))
	})
})
