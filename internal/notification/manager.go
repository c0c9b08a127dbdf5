package notification

// manager implements NotificationManager
type manager struct {
	channels        []NotificationChannel
	extra           []NotificationChannel
	enabled         bool
	commandExecutor CommandExecutor
}

// NewManager creates a new NotificationManager based on configuration.
// Channels added with WithChannel are always active, even when cfg disables
// the configured ones.
func NewManager(cfg *Config, opts ...Option) (NotificationManager, error) {
	m := &manager{
		channels: []NotificationChannel{},
		enabled:  cfg.Enabled,
	}

	for _, opt := range opts {
		opt(m)
	}

	if cfg.Enabled {
		if cfg.OSNotification.Enabled {
			var osOpts []Option
			if m.commandExecutor != nil {
				osOpts = append(osOpts, WithCommandExecutor(m.commandExecutor))
			}
			m.channels = append(m.channels, NewOSNotificationChannel(&cfg.OSNotification, osOpts...))
		}

		if cfg.LogNotification.Enabled {
			m.channels = append(m.channels, NewLogNotificationChannel(&cfg.LogNotification))
		}
	}

	m.channels = append(m.channels, m.extra...)
	return m, nil
}

// Send dispatches notification to all channels
func (m *manager) Send(n Notification) error {
	var lastErr error
	for _, ch := range m.channels {
		if err := ch.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close cleans up resources
func (m *manager) Close() error {
	var lastErr error
	for _, ch := range m.channels {
		if err := ch.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// ChannelCount returns the number of active channels
func (m *manager) ChannelCount() int {
	return len(m.channels)
}
