package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr bool
	}{
		{
			name:      "默认配置合法",
			mutate:    func(c *Config) {},
			expectErr: false,
		},
		{
			name: "权重和略小于1.0必须报错",
			mutate: func(c *Config) {
				c.Weights.Quality = 0.049 // 总和 0.999
			},
			expectErr: true,
		},
		{
			name: "权重和略大于1.0必须报错",
			mutate: func(c *Config) {
				c.Weights.Quality = 0.051 // 总和 1.001
			},
			expectErr: true,
		},
		{
			name: "归一化上限为负必须报错",
			mutate: func(c *Config) {
				c.Caps.StarVelocityCap = -1
			},
			expectErr: true,
		},
		{
			name: "max_age_days为0必须报错",
			mutate: func(c *Config) {
				c.Thresholds.MaxAgeDays = 0
			},
			expectErr: true,
		},
		{
			name: "聚类数为0必须报错",
			mutate: func(c *Config) {
				c.Clusters = 0
			},
			expectErr: true,
		},
		{
			name: "换一组和为1.0的权重不报错",
			mutate: func(c *Config) {
				c.Weights = Weights{
					StarVelocity:        0.30,
					GrowthRate:          0.20,
					Engagement:          0.10,
					ContributorVelocity: 0.10,
					Activity:            0.10,
					Freshness:           0.10,
					Quality:             0.10,
				}
			},
			expectErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), weightSumTolerance)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()

	t.Run("nil覆盖返回原配置", func(t *testing.T) {
		merged := Merge(base, nil)
		assert.Equal(t, base, merged)
	})

	t.Run("只覆盖阈值段", func(t *testing.T) {
		merged := Merge(base, &Overrides{
			Thresholds: &Thresholds{
				MinStars:        50,
				MinContributors: 5,
				MaxAgeDays:      180,
			},
		})

		assert.Equal(t, 50, merged.Thresholds.MinStars)
		assert.Equal(t, 180.0, merged.Thresholds.MaxAgeDays)
		// 其他段保持默认
		assert.Equal(t, base.Weights, merged.Weights)
		assert.Equal(t, base.Caps, merged.Caps)
		assert.Equal(t, base.Clusters, merged.Clusters)
	})

	t.Run("覆盖聚类数", func(t *testing.T) {
		k := 3
		merged := Merge(base, &Overrides{Clusters: &k})
		assert.Equal(t, 3, merged.Clusters)
	})

	t.Run("权重段整体替换后仍需通过校验", func(t *testing.T) {
		merged := Merge(base, &Overrides{
			Weights: &Weights{StarVelocity: 1.0}, // 其余六个为 0，总和恰好 1.0
		})
		require.NoError(t, merged.Validate())
		assert.Equal(t, 1.0, merged.Weights.StarVelocity)
		assert.Equal(t, 0.0, merged.Weights.Quality)
	})
}
