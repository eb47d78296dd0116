package content

import "testing"

func TestBuildCacheKeyIsDeterministic(t *testing.T) {
	in := CacheKeyInput{
		UserId:          "u1",
		ContainerId:     "learn-math",
		Subject:         "Math",
		CareerId:        "career-engineer",
		SkillId:         "skill-addition",
		AdaptationLevel: "medium",
		RecentAccuracy:  72,
	}
	first := BuildCacheKey(in)
	second := BuildCacheKey(in)
	if first != second {
		t.Errorf("same input produced different keys: %q vs %q", first, second)
	}
	want := "content:u1:learn-math:math:career-engineer:skill-addition:medium-70"
	if first != want {
		t.Errorf("key = %q, want %q", first, want)
	}
}

func TestBuildCacheKeyComponents(t *testing.T) {
	base := CacheKeyInput{
		UserId:          "u1",
		ContainerId:     "learn-math",
		Subject:         "math",
		CareerId:        "c1",
		SkillId:         "s1",
		AdaptationLevel: "medium",
		RecentAccuracy:  70,
	}

	tests := []struct {
		name   string
		mutate func(*CacheKeyInput)
	}{
		{"user changes key", func(in *CacheKeyInput) { in.UserId = "u2" }},
		{"container changes key", func(in *CacheKeyInput) { in.ContainerId = "experience-math" }},
		{"subject changes key", func(in *CacheKeyInput) { in.Subject = "reading" }},
		{"career changes key", func(in *CacheKeyInput) { in.CareerId = "c2" }},
		{"skill changes key", func(in *CacheKeyInput) { in.SkillId = "s2" }},
		{"adaptation level changes key", func(in *CacheKeyInput) { in.AdaptationLevel = "hard" }},
		{"accuracy bucket changes key", func(in *CacheKeyInput) { in.RecentAccuracy = 40 }},
	}

	baseKey := BuildCacheKey(base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if key := BuildCacheKey(in); key == baseKey {
				t.Errorf("mutation produced the same key %q", key)
			}
		})
	}
}

func TestBuildCacheKeyAccuracyBuckets(t *testing.T) {
	tests := []struct {
		accuracy float64
		bucket   string
	}{
		{0, "medium-0"},
		{4.9, "medium-0"},
		{5, "medium-10"},
		{67, "medium-70"},
		{72, "medium-70"},
		{75, "medium-80"},
		{100, "medium-100"},
	}

	for _, tt := range tests {
		in := CacheKeyInput{
			UserId: "u1", ContainerId: "c", Subject: "math",
			AdaptationLevel: "medium", RecentAccuracy: tt.accuracy,
		}
		key := BuildCacheKey(in)
		want := "content:u1:c:math:-:-:" + tt.bucket
		if key != want {
			t.Errorf("accuracy %v: key = %q, want %q", tt.accuracy, key, want)
		}
	}
}

func TestBuildCacheKeyEmptyThemeFieldsDash(t *testing.T) {
	key := BuildCacheKey(CacheKeyInput{
		UserId: "u1", ContainerId: "learn-math", Subject: "Math",
		AdaptationLevel: "easy", RecentAccuracy: 50,
	})
	want := "content:u1:learn-math:math:-:-:easy-50"
	if key != want {
		t.Errorf("key = %q, want %q", key, want)
	}
}
