package domain

import (
	"fmt"

	"github.com/tdex-network/basketd/pkg/fixed"
)

// BackingConfig holds the governance parameters of the traders.
type BackingConfig struct {
	TradingDelay     int64
	MaxTradeSlippage fixed.Fix
	BackingBuffer    fixed.Fix
	MinTradeVolume   fixed.Fix
}

// NewBackingConfig ...
func NewBackingConfig(
	tradingDelay int64, maxTradeSlippage, backingBuffer, minTradeVolume fixed.Fix,
) (*BackingConfig, error) {
	c := &BackingConfig{}
	if err := c.SetTradingDelay(tradingDelay); err != nil {
		return nil, err
	}
	if err := c.SetMaxTradeSlippage(maxTradeSlippage); err != nil {
		return nil, err
	}
	if err := c.SetBackingBuffer(backingBuffer); err != nil {
		return nil, err
	}
	if err := c.SetMinTradeVolume(minTradeVolume); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *BackingConfig) SetTradingDelay(delay int64) error {
	if delay < 0 || delay > MaxTradingDelay {
		return fmt.Errorf("%w: invalid tradingDelay", ErrOutOfRange)
	}
	c.TradingDelay = delay
	return nil
}

func (c *BackingConfig) SetMaxTradeSlippage(slippage fixed.Fix) error {
	if slippage.Gt(MaxTradeSlippage) {
		return fmt.Errorf("%w: invalid maxTradeSlippage", ErrOutOfRange)
	}
	c.MaxTradeSlippage = slippage
	return nil
}

func (c *BackingConfig) SetBackingBuffer(buffer fixed.Fix) error {
	if buffer.Gt(MaxBackingBuffer) {
		return fmt.Errorf("%w: invalid backingBuffer", ErrOutOfRange)
	}
	c.BackingBuffer = buffer
	return nil
}

func (c *BackingConfig) SetMinTradeVolume(volume fixed.Fix) error {
	if volume.Gt(MaxMinTradeVolume) {
		return fmt.Errorf("%w: invalid minTradeVolume", ErrOutOfRange)
	}
	c.MinTradeVolume = volume
	return nil
}
