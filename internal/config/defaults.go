package config

import "time"

// PlatformOrder is the order platforms are crawled in.
var PlatformOrder = []string{"navercafe", "daumcafe", "naverblog", "tistory", "dcinside", "orbi"}

// Default returns the built-in configuration. Selector tables live with each
// adapter; entries under platforms.<name>.selectors override them per field.
func Default() *Config {
	return &Config{
		Keywords: []string{
			"해설 오류",
			"해설 이상",
			"해설 틀림",
			"해설 납득",
			"해설 이의",
			"정답 이의제기",
			"리트 해설",
			"LEET 해설",
		},
		ContextKeywords: []string{
			"LEET", "리트", "법학적성시험", "언어이해", "추리논증",
			"해설", "정답", "문항", "기출", "모의고사",
		},
		NegativePatterns: []string{
			"해설 오류", "해설이 틀", "해설이 다르", "해설이 이상", "해설 이상",
			"납득이 안", "납득 안", "이해가 안", "오답", "논란",
			"이의제기", "이의 제기", "잘못된 해설", "엉터리", "억지",
			"말이 안", "복수정답", "정답 없음",
		},
		AdTitleKeywords: []string{
			"광고", "홍보", "할인", "이벤트", "쿠폰", "수강생 모집", "특강 안내", "무료 배포",
		},
		AdAuthorKeywords: []string{
			"광고", "홍보", "marketing", "official", "공식",
		},

		MaxPages:      3,
		FetchContent:  true,
		AutosaveEvery: 20,

		Delays: Delays{
			BetweenSearches:  Range{Min: 2 * time.Second, Max: 4 * time.Second},
			BetweenPosts:     Range{Min: 1 * time.Second, Max: 3 * time.Second},
			BetweenPages:     Range{Min: 1 * time.Second, Max: 2 * time.Second},
			BetweenPlatforms: Range{Min: 5 * time.Second, Max: 10 * time.Second},
		},
		RateLimits: map[string]int{
			"navercafe": 20,
			"daumcafe":  20,
			"naverblog": 30,
			"tistory":   30,
			"dcinside":  20,
			"orbi":      30,
		},

		Browser: BrowserConfig{
			Headless:  true,
			Timeout:   30 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Locale:    "ko-KR",
		},
		Fetcher: FetcherConfig{
			Timeout:   15 * time.Second,
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
		},
		Platforms: map[string]Platform{
			"navercafe": {
				Enabled:         true,
				CredentialsPath: ".cookies/navercafe.json",
				Options:         map[string]string{"cafe": "leetpass", "club_id": "10000000"},
			},
			"daumcafe": {
				Enabled:         true,
				CredentialsPath: ".cookies/daumcafe.json",
				Options:         map[string]string{"cafe": "leetstudy", "grpid": "1AbCd"},
			},
			"naverblog": {Enabled: true},
			"tistory":   {Enabled: true},
			"dcinside":  {Enabled: true, Options: map[string]string{"gallery": "leet"}},
			"orbi":      {Enabled: true},
		},

		OutputDir: "results",
	}
}
