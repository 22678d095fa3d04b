package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/link"
)

// seedBoost pushes curated roots ahead of anything else at depth zero.
const seedBoost = 100

type seed struct {
	title string
	url   string
}

// curatedSeeds are the hand-picked depth-0 roots the corpus grows from.
var curatedSeeds = []seed{
	{"Why we fell for clean eating", "https://www.theguardian.com/lifeandstyle/2017/aug/11/why-we-fell-for-clean-eating"},
	{"Hiring and the market for lemons", "https://danluu.com/hiring-lemons"},
	{"Chartbook: Electric bikes as a climate change solution", "https://charlesyang.substack.com/p/chartbook-electric-bikes-as-a-climate"},
	{"Why I quit working at an AI startup to join the Department of Energy", "https://charlesyang.substack.com/p/why-i-quit-working-at-an-ai-startup"},
	{"How to Do Great Work", "http://www.paulgraham.com/greatwork.html"},
	{"The Python Paradox", "http://www.paulgraham.com/pypar.html"},
	{"How to Make Wealth", "http://www.paulgraham.com/wealth.html"},
	{"Why Learn Compilers", "https://amasad.me/compilers"},
	{"What it's like to be married to a dying man", "https://jakeseliger.com/2023/07/24/what-its-like-to-be-married-to-a-dying-man"},
	{"Are you taking care of yourself?", "https://jakeseliger.com/2023/08/09/are-you-taking-care-of-yourself"},
	{"Trying to be human, and other mistakes", "https://jakeseliger.com/2023/08/19/trying-to-be-human-and-other-mistakes"},
	{"The Polymath Playbook", "https://salman.io/blog/polymath-playbook"},
	{"Refusing to teach kids math will not improve equity", "https://www.noahpinion.blog/p/refusing-to-teach-kids-math-will"},
	{`Comparing "Morning in America" with 2023`, "https://www.noahpinion.blog/p/comparing-morning-in-america-with"},
	{"How is LLaMa.cpp possible?", "https://finbarr.ca/how-is-llama-cpp-possible"},
	{"Confessions of an infosec has-been", "https://lcamtuf.substack.com/p/confessions-of-an-infosec-has-been"},
	{"Writing at work", "https://lcamtuf.substack.com/p/writing-at-work"},
	{"Why Smart People Believe Stupid Things", "https://gurwinder.substack.com/p/why-smart-people-hold-stupid-beliefs"},
	{"What philosophy is good for", "https://jessylin.com/2019/11/17/what-philosophy-is-good-for/"},
	{"How To Understand Things", "https://nabeelqu.substack.com/p/understanding"},
	{"Really knowing things", "https://tannerhoke.com/posts/really-knowing-things"},
	{"Data Laced with History: Causal Trees & Operational CRDTs", "http://archagon.net/blog/2018/03/24/data-laced-with-history/"},
	{"When I have a slower publishing cadence my blog grows faster", "https://www.henrikkarlsson.xyz/p/effort-pieces"},
	{"Searching for outliers", "https://www.benkuhn.net/outliers/"},
	{"How to design an antifragile career", "https://radreads.co/antifragile-career/"},
	{"Transformer Inference Arithmetic", "https://kipp.ly/transformer-inference-arithmetic/"},
	{"Better learning", "https://ourworldindata.org/better-learning"},
	{"Complement", "https://gwern.net/complement"},
	{"Don't forget Microsoft", "https://luttig.substack.com/p/dont-forget-microsoft"},
	{"Programming Sucks", "https://www.stilldrinking.org/programming-sucks"},
	{"Jepsen: MongoDB", "https://aphyr.com/posts/284-jepsen-mongodb"},
	{"Clear in the iCloud", "https://blog.helftone.com/clear-in-the-icloud/"},
	{"Every Bay Area House Party", "https://astralcodexten.substack.com/p/every-bay-area-house-party"},
	{"People can read their managers' minds", "http://yosefk.com/blog/people-can-read-their-managers-mind.html"},
	{"The Story of VaccinateCA", "https://worksinprogress.co/issue/the-story-of-vaccinateca"},
	{"Why Tech Cannot Escape Expensive Housing", "https://worksinprogress.co/issue/why-tech-cannot-escape-expensive-housing"},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [url ...]",
		Short: "Enqueue root URLs; with no arguments, the curated seed list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}

			var links []link.Link
			if len(args) > 0 {
				for _, raw := range args {
					l, err := link.FromURL(raw)
					if err != nil {
						return err
					}
					links = append(links, l)
				}
			} else {
				for _, s := range curatedSeeds {
					l, err := link.FromURL(s.url)
					if err != nil {
						app.Logger.Warn("skipping bad seed", zap.String("url", s.url), zap.Error(err))
						continue
					}
					l.Text = s.title
					links = append(links, l)
				}
			}

			inserted, err := app.Tasks.EnqueueBoosted(cmd.Context(), links, seedBoost)
			if err != nil {
				return err
			}
			app.Logger.Info("seeds enqueued",
				zap.Int("candidates", len(links)),
				zap.Int64("inserted", inserted),
			)
			return nil
		},
	}
}
