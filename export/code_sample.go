package export

// DefaultCodeSample is the fixed illustrative listing included in every
// report to show how the same analysis looks in code.
const DefaultCodeSample = `import pandas as pd
import plotly.express as px

df = pd.read_csv('ODI_Match_info.csv')
data = df['player_of_match'].value_counts().reset_index()
data.columns = ['player_of_match', 'count']
fig = px.bar(data, x='player_of_match', y='count', title='Most Common Player of the Match')
fig.show()
`
